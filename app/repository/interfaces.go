package repository

import (
	"github.com/rahulmehra-dev/GigLedger/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// NotificationRepository defines the interface for notification reads
type NotificationRepository interface {
	ListByUser(userID uint, offset, limit int) ([]models.Notification, error)
	CountUnread(userID uint) (int64, error)
	MarkRead(id, userID uint) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Notification NotificationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
