package handlers

import (
	"time"

	"github.com/earnlang/earnlang/database"
	"github.com/earnlang/earnlang/models"
	"github.com/gofiber/fiber/v2"
)

func GetProfile(c *fiber.Ctx) error {
	user := c.Locals("currentUser").(*models.User)

	var taskHistory []models.TaskCompletion
	database.DB.Preload("Task").Where("user_id = ?", user.ID).
		Order("completed_at desc").Limit(20).Find(&taskHistory)

	var payoutHistory []models.Payout
	database.DB.Where("user_id = ?", user.ID).
		Order("requested_at desc").Limit(10).Find(&payoutHistory)

	return c.JSON(fiber.Map{
		"user":           user,
		"task_history":   taskHistory,
		"payout_history": payoutHistory,
	})
}

func GetUserStats(c *fiber.Ctx) error {
	user := c.Locals("currentUser").(*models.User)

	var totalCompletions int64
	database.DB.Model(&models.TaskCompletion{}).Where("user_id = ?", user.ID).Count(&totalCompletions)

	var payoutStats []PayoutStatusStat
	database.DB.Model(&models.Payout{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(amount), 0) as total_amount").
		Where("user_id = ?", user.ID).
		Group("status").
		Find(&payoutStats)

	var recentActivity []models.TaskCompletion
	database.DB.Preload("Task").Where("user_id = ?", user.ID).
		Order("completed_at desc").Limit(10).Find(&recentActivity)

	return c.JSON(fiber.Map{
		"task_stats": fiber.Map{
			"total_tasks":  totalCompletions,
			"total_points": user.TotalPointsEarned,
		},
		"payout_stats":    payoutStats,
		"recent_activity": recentActivity,
	})
}

func GetReferralInfo(c *fiber.Ctx) error {
	user := c.Locals("currentUser").(*models.User)

	var referrals []models.Referral
	database.DB.Preload("ReferredUser").Where("referrer_id = ?", user.ID).
		Order("created_at desc").Find(&referrals)

	type referredUser struct {
		Username string    `json:"username"`
		Status   string    `json:"status"`
		JoinedAt time.Time `json:"joined_at"`
	}

	referred := make([]referredUser, 0, len(referrals))
	for _, r := range referrals {
		referred = append(referred, referredUser{
			Username: r.ReferredUser.Username,
			Status:   r.Status,
			JoinedAt: r.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"referral_code":  user.ReferralCode,
		"referral_count": len(referred),
		"referred_by":    user.ReferredByCode,
		"referred_users": referred,
	})
}
