package user

import (
	"testing"

	"padaria-backend/internal/apperr"
	"padaria-backend/internal/database"
	"padaria-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
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

func mariaRequest() RegisterRequest {
	return RegisterRequest{
		Name:     "Maria",
		Phone:    "11999990000",
		Email:    "maria@padaria.com",
		Password: "segredo123",
	}
}

func TestCreateUserHashesPasswordAndDefaultsRole(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	u, err := svc.Create(mariaRequest())
	require.NoError(t, err)

	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "segredo123", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("segredo123")))
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	req := mariaRequest()
	req.Email = "  Maria@Padaria.COM "
	u, err := svc.Create(req)
	require.NoError(t, err)
	assert.Equal(t, "maria@padaria.com", u.Email)
}

func TestCreateUserConflicts(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	_, err := svc.Create(mariaRequest())
	require.NoError(t, err)

	t.Run("duplicate email", func(t *testing.T) {
		req := mariaRequest()
		req.Phone = "11888880000"
		_, err := svc.Create(req)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("duplicate phone", func(t *testing.T) {
		req := mariaRequest()
		req.Email = "outra@padaria.com"
		_, err := svc.Create(req)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})
}

func TestCreateUserValidation(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"empty name", func(r *RegisterRequest) { r.Name = "" }},
		{"empty phone", func(r *RegisterRequest) { r.Phone = "" }},
		{"empty email", func(r *RegisterRequest) { r.Email = "" }},
		{"empty password", func(r *RegisterRequest) { r.Password = "" }},
		{"bad role", func(r *RegisterRequest) { r.Role = "manager" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mariaRequest()
			tt.mutate(&req)
			_, err := svc.Create(req)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestAuthenticate(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	created, err := svc.Create(mariaRequest())
	require.NoError(t, err)

	u, err := svc.Authenticate("Maria@Padaria.com", "segredo123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = svc.Authenticate("maria@padaria.com", "errada")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	_, err = svc.Authenticate("ninguem@padaria.com", "segredo123")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	u, err := svc.Create(mariaRequest())
	require.NoError(t, err)

	newPass := "novasenha456"
	_, err = svc.Update(u.ID, Patch{Password: &newPass})
	require.NoError(t, err)

	_, err = svc.Authenticate(u.Email, "novasenha456")
	assert.NoError(t, err)
	_, err = svc.Authenticate(u.Email, "segredo123")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestDeleteUser(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	u, err := svc.Create(mariaRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(u.ID))
	err = svc.Delete(u.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestEnsureAdmin(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	// no password configured: nothing seeded
	require.NoError(t, svc.EnsureAdmin("admin@padaria.com", ""))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	require.NoError(t, svc.EnsureAdmin("admin@padaria.com", "senhaforte"))
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// idempotent while an admin exists
	require.NoError(t, svc.EnsureAdmin("outro@padaria.com", "senhaforte"))
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
