package product

import (
	"testing"

	"padaria-backend/internal/apperr"
	"padaria-backend/internal/database"
	"padaria-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedIngredient(t *testing.T, db *gorm.DB, name string) *models.Ingredient {
	t.Helper()
	ing := models.Ingredient{
		Name:    name,
		Measure: models.MeasureKilogram,
		Mark:    "-",
		Value:   5,
	}
	require.NoError(t, db.Create(&ing).Error)
	return &ing
}

func cakeRequest() CreateRequest {
	return CreateRequest{
		Name:      "bolo de fuba",
		PriceCost: 5,
		PriceSale: 12,
		Measure:   models.MeasureUnit,
		Quantity:  3,
	}
}

func TestCreateProductWithFirstBatch(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	prod, err := svc.Create(cakeRequest())
	require.NoError(t, err)

	require.Len(t, prod.Batches, 1)
	assert.Equal(t, 3.0, prod.Batches[0].Quantity)
	assert.Empty(t, prod.Portions)
}

func TestCreateProductWithRecipe(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	flour := seedIngredient(t, db, "farinha")
	corn := seedIngredient(t, db, "fuba")

	req := cakeRequest()
	req.Recipe = []PortionRequest{
		{IngredientID: flour.ID, Quantity: 0.2},
		{IngredientID: corn.ID, Quantity: 0.3},
	}
	prod, err := svc.Create(req)
	require.NoError(t, err)
	assert.Len(t, prod.Portions, 2)
}

func TestCreateProductUnknownRecipeIngredientRollsBack(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	req := cakeRequest()
	req.Recipe = []PortionRequest{{IngredientID: "missing", Quantity: 0.2}}
	_, err := svc.Create(req)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	// neither the product nor its batch survived the failure
	var products, batches int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	require.NoError(t, db.Model(&models.ProductBatch{}).Count(&batches).Error)
	assert.Equal(t, int64(0), products)
	assert.Equal(t, int64(0), batches)
}

func TestCreateProductValidation(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"empty name", func(r *CreateRequest) { r.Name = "" }},
		{"bad measure", func(r *CreateRequest) { r.Measure = "box" }},
		{"zero sale price", func(r *CreateRequest) { r.PriceSale = 0 }},
		{"negative quantity", func(r *CreateRequest) { r.Quantity = -1 }},
		{"zero portion", func(r *CreateRequest) {
			r.Recipe = []PortionRequest{{IngredientID: "any", Quantity: 0}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := cakeRequest()
			tt.mutate(&req)
			_, err := svc.Create(req)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestUpdateProductPatchesOnlyGivenFields(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	prod, err := svc.Create(cakeRequest())
	require.NoError(t, err)

	price := 14.0
	updated, err := svc.Update(prod.ID, Patch{PriceSale: &price})
	require.NoError(t, err)
	assert.Equal(t, 14.0, updated.PriceSale)
	assert.Equal(t, prod.Name, updated.Name)
	assert.Equal(t, prod.PriceCost, updated.PriceCost)
}

func TestDeleteProductRemovesChildren(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	flour := seedIngredient(t, db, "farinha")

	req := cakeRequest()
	req.Recipe = []PortionRequest{{IngredientID: flour.ID, Quantity: 0.2}}
	prod, err := svc.Create(req)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(prod.ID))

	var batches, portions int64
	require.NoError(t, db.Model(&models.ProductBatch{}).Where("product_id = ?", prod.ID).Count(&batches).Error)
	require.NoError(t, db.Model(&models.Portion{}).Where("product_id = ?", prod.ID).Count(&portions).Error)
	assert.Equal(t, int64(0), batches)
	assert.Equal(t, int64(0), portions)
}

func TestAddRecipeToExistingProduct(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	flour := seedIngredient(t, db, "farinha")

	prod, err := svc.Create(cakeRequest())
	require.NoError(t, err)

	updated, err := svc.AddRecipe(prod.ID, []PortionRequest{{IngredientID: flour.ID, Quantity: 0.2}})
	require.NoError(t, err)
	assert.Len(t, updated.Portions, 1)

	_, err = svc.AddRecipe(prod.ID, nil)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestPortionLifecycle(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	flour := seedIngredient(t, db, "farinha")

	req := cakeRequest()
	req.Recipe = []PortionRequest{{IngredientID: flour.ID, Quantity: 0.2}}
	prod, err := svc.Create(req)
	require.NoError(t, err)
	require.Len(t, prod.Portions, 1)
	portionID := prod.Portions[0].ID

	updated, err := svc.UpdatePortion(portionID, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.5, updated.Quantity)

	_, err = svc.UpdatePortion(portionID, 0)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	require.NoError(t, svc.DeletePortion(portionID))
	err = svc.DeletePortion(portionID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestProductBatchLifecycle(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	prod, err := svc.Create(cakeRequest())
	require.NoError(t, err)

	batch, err := svc.AddBatch(prod.ID, nil, 7)
	require.NoError(t, err)

	qty := 4.0
	updated, err := svc.UpdateBatch(batch.ID, BatchPatch{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 4.0, updated.Quantity)

	batches, err := svc.Batches(prod.ID)
	require.NoError(t, err)
	assert.Len(t, batches, 2)

	require.NoError(t, svc.DeleteBatch(batch.ID))

	_, err = svc.AddBatch("missing", nil, 1)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
