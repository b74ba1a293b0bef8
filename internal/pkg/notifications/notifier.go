package notifications

import (
	"fmt"
	"log"

	"github.com/rahulmehra-dev/GigLedger/app/models"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/mail"
	"gorm.io/gorm"
)

// Service is the best-effort notifier for ledger-affecting events. Every
// failure is logged and swallowed: a broken mail server or a full
// notifications table must never roll back a financial transition.
type Service struct {
	db *gorm.DB
}

// NewService creates a notifier writing through the given DB handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Notify records an in-app notification and sends a best-effort email when
// the user has one. Fire-and-forget: no error is ever returned.
func (s *Service) Notify(userID uint, category, message string, referenceID uint) {
	if userID == 0 {
		return
	}

	if err := models.CreateNotification(s.db, userID, category, message, referenceID); err != nil {
		log.Printf("notification insert failed for user %d: %v", userID, err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		log.Printf("notification mail lookup failed for user %d: %v", userID, err)
		return
	}
	if user.Email == "" {
		return
	}
	if err := mail.SendMail(user.Email, subjectFor(category), message); err != nil {
		log.Printf("notification mail send failed for user %d: %v", userID, err)
	}
}

func subjectFor(category string) string {
	switch category {
	case "payment":
		return "GigLedger: payment received"
	case "payout":
		return "GigLedger: payout update"
	default:
		return fmt.Sprintf("GigLedger: %s", category)
	}
}
