package user

import (
	"errors"
	"strings"

	"padaria-backend/internal/apperr"
	"padaria-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// NormalizeEmail applies the canonical form used for the unique index.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

type RegisterRequest struct {
	Name     string
	Phone    string
	Email    string
	Password string
	Role     models.UserRole
}

func (s *Service) Create(req RegisterRequest) (*models.User, error) {
	req.Email = NormalizeEmail(req.Email)

	if req.Name == "" || req.Phone == "" || req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("name, phone, email and password are required")
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		return nil, apperr.Validation("role must be user or admin")
	}

	var count int64
	if err := s.db.Model(&models.User{}).
		Where("email = ? OR phone = ?", req.Email, req.Phone).
		Count(&count).Error; err != nil {
		return nil, apperr.Server(err)
	}
	if count > 0 {
		return nil, apperr.Conflict("email or phone already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Server(err)
	}

	user := models.User{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: string(hash),
		Role:     req.Role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return &user, nil
}

// Authenticate checks the credentials and returns the user on success.
// The same unauthorized error covers unknown email and wrong password.
func (s *Service) Authenticate(email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	var user models.User
	err := s.db.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	return &user, nil
}

func (s *Service) Get(id string) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	return &user, nil
}

func (s *Service) All() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("name ASC").Find(&users).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return users, nil
}

// Patch lists the mutable user fields; nil means unchanged. A new
// password is re-hashed before storage.
type Patch struct {
	Name     *string
	Phone    *string
	Email    *string
	Password *string
	Role     *models.UserRole
}

func (s *Service) Update(id string, patch Patch) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	if patch.Email != nil {
		user.Email = NormalizeEmail(*patch.Email)
	}
	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Server(err)
		}
		user.Password = string(hash)
	}
	if patch.Role != nil {
		if *patch.Role != models.RoleUser && *patch.Role != models.RoleAdmin {
			return nil, apperr.Validation("role must be user or admin")
		}
		user.Role = *patch.Role
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return &user, nil
}

func (s *Service) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return apperr.Server(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// EnsureAdmin seeds the bootstrap admin account when no user holds the
// admin role yet.
func (s *Service) EnsureAdmin(email, password string) error {
	if password == "" {
		return nil
	}

	var count int64
	if err := s.db.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return apperr.Server(err)
	}
	if count > 0 {
		return nil
	}

	_, err := s.Create(RegisterRequest{
		Name:     "admin",
		Phone:    "000000000",
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	return err
}
