package database

import (
	"padaria-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to postgres and runs the migrations. The handle is
// passed explicitly to every service; there is no package-global
// session.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Ingredient{},
		&models.IngredientBatch{},
		&models.Product{},
		&models.ProductBatch{},
		&models.Portion{},
		&models.Sale{},
	)
}
