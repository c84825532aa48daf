package jobs

import (
	"log"
	"time"

	"github.com/earnlang/earnlang/database"
	"github.com/earnlang/earnlang/models"
)

func PruneExpiredResetTokens() {
	log.Println("Running job: PruneExpiredResetTokens...")

	result := database.DB.Model(&models.User{}).
		Where("reset_password_token IS NOT NULL AND reset_password_token_expires_at < ?", time.Now()).
		Updates(map[string]interface{}{
			"reset_password_token":            nil,
			"reset_password_token_expires_at": nil,
		})

	if result.Error != nil {
		log.Printf("Error pruning expired reset tokens: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("Cleared %d expired reset token(s).", result.RowsAffected)
	}
}
