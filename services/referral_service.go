package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/earnlang/earnlang/database"
	"github.com/earnlang/earnlang/models"
	"github.com/earnlang/earnlang/notifications"
	"github.com/earnlang/earnlang/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fallback when no active referral task exists in the catalog.
const defaultReferralRewardPoints = 100

// CompleteReferralIfApplicable fires when a referred user finishes their
// first task: the pending referral flips to completed and the referrer is
// credited the referral task reward.
func CompleteReferralIfApplicable(userID uuid.UUID) {
	var referrer models.User
	var reward int64

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var referral models.Referral
		if err := tx.Preload("Referrer").Where("referred_user_id = ? AND status = ?", userID, "pending").First(&referral).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		reward = defaultReferralRewardPoints
		var referralTask models.Task
		taskFound := false
		if err := tx.Where("type = ? AND is_active = ?", "referral", true).First(&referralTask).Error; err == nil {
			reward = referralTask.Points
			taskFound = true
		}

		res := tx.Model(&models.User{}).
			Where("id = ?", referral.ReferrerID).
			Updates(map[string]interface{}{
				"points":              gorm.Expr("points + ?", reward),
				"total_points_earned": gorm.Expr("total_points_earned + ?", reward),
			})
		if res.Error != nil {
			return res.Error
		}

		if taskFound {
			completion := models.TaskCompletion{
				UserID:       referral.ReferrerID,
				TaskID:       referralTask.ID,
				PointsEarned: reward,
				CompletedAt:  time.Now(),
			}
			if err := tx.Create(&completion).Error; err != nil {
				return err
			}
		}

		referral.Status = "completed"
		referral.RewardPoints = reward
		if err := tx.Save(&referral).Error; err != nil {
			return err
		}

		referrer = referral.Referrer
		return nil
	})

	if err != nil {
		log.Printf("🔥 Error processing referral for user %s: %v", userID, err)
		return
	}

	if referrer.ID == uuid.Nil {
		return
	}

	websocket.Notify(referrer.ID, "referral_completed", map[string]interface{}{"points_earned": reward})

	go notifications.SendEmail(
		referrer.Username,
		referrer.Email,
		"You've Earned Referral Points!",
		fmt.Sprintf("<h1>Congratulations!</h1><p>Someone you referred has completed their first task. %d points have been added to your balance.</p>", reward),
	)
}
