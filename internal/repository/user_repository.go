package repository

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"chat-api/internal/models"
	"chat-api/internal/pkg/apperr"
)

// bcryptCost is tuned for interactive login; high enough to resist offline
// brute force.
const bcryptCost = 14

type UserRepository struct {
	DB *gorm.DB
}

// Register stores a new user with a salted password hash. The returned user
// carries the hash internally but it is never serialized.
func (r *UserRepository) Register(name, email, password, pic string) (*models.User, error) {
	var count int64
	if err := r.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Conflict("email is already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := models.User{Name: name, Email: email, Password: string(hash), Pic: pic}
	if err := r.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies credentials. Unknown email and wrong password fail
// with the same error so the endpoint cannot be used for account enumeration.
func (r *UserRepository) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.BadRequest("incorrect email or password")
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperr.BadRequest("incorrect email or password")
	}
	return &user, nil
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user", id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Search lists users whose name matches the search term, case-insensitively,
// excluding the caller.
func (r *UserRepository) Search(term string, excludeID uint, limit, offset int) ([]models.User, int64, error) {
	q := r.DB.Model(&models.User{}).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%").
		Where("id <> ?", excludeID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, total, nil
}
