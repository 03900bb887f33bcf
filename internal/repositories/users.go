package repositories

import (
	"time"

	"github.com/rahulvm-dev/messagely/internal/models"
	"gorm.io/gorm"
)

// UserStore is the credential-store contract the handlers depend on.
// Lookups return gorm.ErrRecordNotFound when the username is unknown.
type UserStore interface {
	Create(user *models.User) error
	FindByUsername(username string) (models.User, error)
	UpdateLastLogin(username string, at time.Time) error
	ListAll() ([]models.Profile, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *GormUserRepository) FindByUsername(username string) (models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	return user, err
}

func (r *GormUserRepository) UpdateLastLogin(username string, at time.Time) error {
	res := r.db.Model(&models.User{}).
		Where("username = ?", username).
		Update("last_login_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormUserRepository) ListAll() ([]models.Profile, error) {
	var users []models.User
	if err := r.db.Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	profiles := make([]models.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}
