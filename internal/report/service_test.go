package report

import (
	"testing"
	"time"

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

func seedReportData(t *testing.T, db *gorm.DB) (bread, cake models.Product, maria, joao models.User) {
	t.Helper()

	bread = models.Product{Name: "pao frances", PriceCost: 0.40, PriceSale: 1.00, Measure: models.MeasureUnit}
	cake = models.Product{Name: "bolo de fuba", PriceCost: 5.00, PriceSale: 12.00, Measure: models.MeasureUnit}
	require.NoError(t, db.Create(&bread).Error)
	require.NoError(t, db.Create(&cake).Error)

	maria = models.User{Name: "Maria", Phone: "1", Email: "maria@padaria.com", Password: "x", Role: models.RoleUser}
	joao = models.User{Name: "Joao", Phone: "2", Email: "joao@padaria.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(&maria).Error)
	require.NoError(t, db.Create(&joao).Error)

	sales := []models.Sale{
		{ProductID: bread.ID, UserID: maria.ID, Quantity: 10, Value: 10, SaleCode: "code-a"},
		{ProductID: cake.ID, UserID: maria.ID, Quantity: 1, Value: 12, SaleCode: "code-a"},
		{ProductID: bread.ID, UserID: joao.ID, Quantity: 5, Value: 5, SaleCode: "code-b"},
	}
	for i := range sales {
		require.NoError(t, db.Create(&sales[i]).Error)
	}
	return bread, cake, maria, joao
}

func TestProductReportEmptyDatabase(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	rep, err := svc.ProductReport(nil, nil, 10)
	require.NoError(t, err)

	assert.Zero(t, rep.SalesAmount)
	assert.Zero(t, rep.NumberOfSales)
	assert.Zero(t, rep.NumberOfProducts)
	assert.Empty(t, rep.TopSellingProducts)
	assert.Empty(t, rep.TopSellers)
}

func TestProductReportAggregates(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	bread, cake, maria, _ := seedReportData(t, db)

	rep, err := svc.ProductReport(nil, nil, 10)
	require.NoError(t, err)

	assert.Equal(t, 27.0, rep.SalesAmount)
	// one checkout per sale code, not per line item
	assert.Equal(t, 2, rep.NumberOfSales)
	assert.Equal(t, 2, rep.NumberOfProducts)
	assert.Equal(t, 16.0, rep.NumberOfProductsSold)
	assert.Equal(t, 16.0, rep.SalesProfit)
	assert.Equal(t, 13.5, rep.MeanTicket)

	require.Len(t, rep.TopSellingProducts, 2)
	assert.Equal(t, bread.ID, rep.TopSellingProducts[0].ID)
	assert.Equal(t, 15.0, rep.TopSellingProducts[0].Quantity)
	assert.Equal(t, cake.ID, rep.TopLeastSoldProducts[0].ID)

	require.NotEmpty(t, rep.TopSellers)
	assert.Equal(t, maria.ID, rep.TopSellers[0].ID)
	assert.Equal(t, 22.0, rep.TopSellers[0].TotalSales)
}

func TestProductReportTruncatesToTopN(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	seedReportData(t, db)

	rep, err := svc.ProductReport(nil, nil, 1)
	require.NoError(t, err)

	assert.Len(t, rep.TopSellingProducts, 1)
	assert.Len(t, rep.TopLeastSoldProducts, 1)
	assert.Len(t, rep.TopSellers, 1)
}

func TestProductReportWindowFiltersSales(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	bread := models.Product{Name: "pao frances", PriceCost: 0.40, PriceSale: 1.00, Measure: models.MeasureUnit}
	require.NoError(t, db.Create(&bread).Error)
	maria := models.User{Name: "Maria", Phone: "1", Email: "maria@padaria.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(&maria).Error)

	old := models.Sale{ProductID: bread.ID, UserID: maria.ID, Quantity: 5, Value: 5, SaleCode: "old",
		CreatedAt: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)}
	recent := models.Sale{ProductID: bread.ID, UserID: maria.ID, Quantity: 2, Value: 2, SaleCode: "recent",
		CreatedAt: time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	rep, err := svc.ProductReport(&start, nil, 10)
	require.NoError(t, err)

	assert.Equal(t, 2.0, rep.SalesAmount)
	assert.Equal(t, 1, rep.NumberOfSales)
	assert.Equal(t, 2.0, rep.NumberOfProductsSold)
}
