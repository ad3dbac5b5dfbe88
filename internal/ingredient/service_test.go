package ingredient

import (
	"testing"
	"time"

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

func flourRequest() CreateRequest {
	return CreateRequest{
		Name:        "farinha de trigo",
		Measure:     models.MeasureKilogram,
		Mark:        "Dona Benta",
		Description: "tipo 1",
		Value:       5.50,
		Quantity:    10,
	}
}

func TestCreateIngredientWithFirstBatch(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	ing, merged, err := svc.Create(flourRequest())
	require.NoError(t, err)
	assert.False(t, merged)
	assert.NotEmpty(t, ing.ID)

	batches, err := svc.Batches(ing.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 10.0, batches[0].Quantity)
}

func TestCreateIngredientMergesDuplicateIntoNewBatch(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	first, merged, err := svc.Create(flourRequest())
	require.NoError(t, err)
	require.False(t, merged)

	req := flourRequest()
	req.Quantity = 5
	second, merged, err := svc.Create(req)
	require.NoError(t, err)
	assert.True(t, merged)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	batches, err := svc.Batches(first.ID)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, 15.0, batches[0].Quantity+batches[1].Quantity)
}

func TestCreateIngredientDifferentTupleIsNewIngredient(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	first, _, err := svc.Create(flourRequest())
	require.NoError(t, err)

	// same name, different brand: not the same ingredient
	req := flourRequest()
	req.Mark = "Renata"
	second, merged, err := svc.Create(req)
	require.NoError(t, err)
	assert.False(t, merged)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateIngredientDefaultsMark(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	req := flourRequest()
	req.Mark = ""
	ing, _, err := svc.Create(req)
	require.NoError(t, err)
	assert.Equal(t, DefaultMark, ing.Mark)
}

func TestCreateIngredientValidation(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"empty name", func(r *CreateRequest) { r.Name = "" }},
		{"bad measure", func(r *CreateRequest) { r.Measure = "ton" }},
		{"zero value", func(r *CreateRequest) { r.Value = 0 }},
		{"negative quantity", func(r *CreateRequest) { r.Quantity = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := flourRequest()
			tt.mutate(&req)
			_, _, err := svc.Create(req)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestUpdateIngredientPatchesOnlyGivenFields(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	ing, _, err := svc.Create(flourRequest())
	require.NoError(t, err)

	newValue := 6.20
	updated, err := svc.Update(ing.ID, Patch{Value: &newValue})
	require.NoError(t, err)

	assert.Equal(t, 6.20, updated.Value)
	assert.Equal(t, ing.Name, updated.Name)
	assert.Equal(t, ing.Mark, updated.Mark)
}

func TestUpdateIngredientUnknown(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	name := "x"
	_, err := svc.Update("missing", Patch{Name: &name})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeleteIngredientRemovesBatches(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	ing, _, err := svc.Create(flourRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ing.ID))

	var batches int64
	require.NoError(t, db.Model(&models.IngredientBatch{}).Where("ingredient_id = ?", ing.ID).Count(&batches).Error)
	assert.Equal(t, int64(0), batches)

	_, err = svc.Get(ing.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAddBatchToUnknownIngredient(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	_, err := svc.AddBatch("missing", nil, 5)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestBatchLifecycle(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	ing, _, err := svc.Create(flourRequest())
	require.NoError(t, err)

	validity, err := time.Parse("2006-01-02", "2026-12-01")
	require.NoError(t, err)
	batch, err := svc.AddBatch(ing.ID, &validity, 25)
	require.NoError(t, err)

	qty := 20.0
	updated, err := svc.UpdateBatch(batch.ID, BatchPatch{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 20.0, updated.Quantity)
	require.NotNil(t, updated.Validity)
	assert.Equal(t, validity, *updated.Validity)

	require.NoError(t, svc.DeleteBatch(batch.ID))
	err = svc.DeleteBatch(batch.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
