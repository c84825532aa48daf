package jobs

import (
	"fmt"
	"log"
	"time"

	config "github.com/earnlang/earnlang/configs"
	"github.com/earnlang/earnlang/database"
	"github.com/earnlang/earnlang/models"
	"github.com/earnlang/earnlang/notifications"
)

const stalePayoutAge = 48 * time.Hour

func SendPendingPayoutReminders() {
	log.Println("Running job: SendPendingPayoutReminders...")

	cutoff := time.Now().Add(-stalePayoutAge)

	var stalePayouts []models.Payout
	err := database.DB.
		Preload("User").
		Where("status = ? AND requested_at < ?", models.PayoutStatusPending, cutoff).
		Order("requested_at asc").
		Find(&stalePayouts).Error
	if err != nil {
		log.Printf("Error checking for stale payouts: %v", err)
		return
	}

	if len(stalePayouts) == 0 {
		return
	}

	body := fmt.Sprintf("<h1>Pending Payouts</h1><p>%d payout request(s) have been waiting for more than 48 hours:</p><ul>", len(stalePayouts))
	for _, p := range stalePayouts {
		body += fmt.Sprintf("<li>%s — ₱%.2f, requested %s</li>", p.User.Username, p.Amount, p.RequestedAt.Format("2006-01-02 15:04"))
	}
	body += "</ul>"

	go notifications.SendEmail(
		config.Config("ADMIN_USERNAME"),
		config.Config("ADMIN_EMAIL"),
		"Payout Requests Awaiting Review",
		body,
	)

	log.Printf("Reminded admin about %d stale payout(s).", len(stalePayouts))
}
