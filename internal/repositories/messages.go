package repositories

import (
	"time"

	"github.com/rahulvm-dev/messagely/internal/models"
	"gorm.io/gorm"
)

// MessageStore is the message-store contract the handlers depend on.
// Lookups return gorm.ErrRecordNotFound when the id is unknown.
type MessageStore interface {
	Create(message *models.Message) error
	FindByID(id uint) (models.Message, error)
	MarkRead(id uint, at time.Time) (models.Message, error)
	FindByFromUser(username string) ([]models.Message, error)
	FindByToUser(username string) ([]models.Message, error)
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *GormMessageRepository) FindByID(id uint) (models.Message, error) {
	var msg models.Message
	err := r.db.Preload("FromUser").Preload("ToUser").First(&msg, id).Error
	return msg, err
}

// MarkRead sets read_at on an unread message as one conditional update,
// so two concurrent calls cannot overwrite each other's timestamp. The
// final record is returned whether or not this call won the update.
func (r *GormMessageRepository) MarkRead(id uint, at time.Time) (models.Message, error) {
	res := r.db.Model(&models.Message{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at)
	if res.Error != nil {
		return models.Message{}, res.Error
	}
	return r.FindByID(id)
}

func (r *GormMessageRepository) FindByFromUser(username string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.Preload("ToUser").
		Where("from_username = ?", username).
		Order("id").
		Find(&msgs).Error
	return msgs, err
}

func (r *GormMessageRepository) FindByToUser(username string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.Preload("FromUser").
		Where("to_username = ?", username).
		Order("id").
		Find(&msgs).Error
	return msgs, err
}
