package handlers

import (
	"errors"
	"math"
	"time"

	"github.com/earnlang/earnlang/database"
	"github.com/earnlang/earnlang/models"
	"github.com/earnlang/earnlang/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	errInsufficientPoints = errors.New("insufficient points")
	errPayoutNotPending   = errors.New("payout is not pending")
)

type PayoutRequestBody struct {
	Amount      float64 `json:"amount" validate:"required,gte=50,lte=10000"`
	GcashNumber string  `json:"gcash_number" validate:"required,len=11,numeric,startswith=09"`
}

// RequestPayout debits the caller's balance and opens a pending payout in one
// transaction. The debit is a conditional decrement so two concurrent
// requests cannot both draw down the same points.
func RequestPayout(c *fiber.Ctx) error {
	uid := UID(c)

	var req PayoutRequestBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	pointsUsed := int64(math.Round(req.Amount * models.PointsPerCurrencyUnit))

	var payout models.Payout
	var newBalance int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND points >= ?", uid, pointsUsed).
			UpdateColumn("points", gorm.Expr("points - ?", pointsUsed))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errInsufficientPoints
		}

		payout = models.Payout{
			UserID:      uid,
			Amount:      req.Amount,
			PointsUsed:  pointsUsed,
			GcashNumber: req.GcashNumber,
			Status:      models.PayoutStatusPending,
			RequestedAt: time.Now(),
		}
		if err := tx.Create(&payout).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, "id = ?", uid).Error; err != nil {
			return err
		}
		newBalance = user.Points

		return nil
	})

	if err != nil {
		if errors.Is(err, errInsufficientPoints) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Insufficient points for this payout"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payout request"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Payout request submitted successfully",
		"payout":      payout,
		"new_balance": newBalance,
	})
}

// CancelPayout is the owner-facing refund path: same arithmetic as an admin
// reject, stored under its own status.
func CancelPayout(c *fiber.Ctx) error {
	uid := UID(c)
	payoutID := c.Params("payoutId")

	var payout models.Payout
	if err := database.DB.First(&payout, "id = ?", payoutID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payout not found"})
	}

	if payout.UserID != uid {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this payout request"})
	}

	var newBalance int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Payout{}).
			Where("id = ? AND status = ?", payout.ID, models.PayoutStatusPending).
			Updates(map[string]interface{}{
				"status":       models.PayoutStatusCancelled,
				"processed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPayoutNotPending
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", uid).
			UpdateColumn("points", gorm.Expr("points + ?", payout.PointsUsed)).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, "id = ?", uid).Error; err != nil {
			return err
		}
		newBalance = user.Points

		return nil
	})

	if err != nil {
		if errors.Is(err, errPayoutNotPending) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payout is not pending"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel payout"})
	}

	websocket.Notify(uid, "payout_cancelled", fiber.Map{
		"payout_id":       payout.ID,
		"points_refunded": payout.PointsUsed,
		"new_balance":     newBalance,
	})

	return c.JSON(fiber.Map{
		"message":     "Payout cancelled successfully",
		"new_balance": newBalance,
	})
}

func GetPayoutHistory(c *fiber.Ctx) error {
	uid := UID(c)

	var payouts []models.Payout
	if err := database.DB.Where("user_id = ?", uid).Order("requested_at desc").Find(&payouts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load payout history"})
	}

	return c.JSON(payouts)
}

type PayoutStatusStat struct {
	Status      string  `json:"status"`
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

func GetPayoutStats(c *fiber.Ctx) error {
	uid := UID(c)

	var byStatus []PayoutStatusStat
	err := database.DB.Model(&models.Payout{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(amount), 0) as total_amount").
		Where("user_id = ?", uid).
		Group("status").
		Find(&byStatus).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load payout stats"})
	}

	var totalRequested, totalCompleted float64
	for _, stat := range byStatus {
		totalRequested += stat.TotalAmount
		if stat.Status == models.PayoutStatusCompleted {
			totalCompleted = stat.TotalAmount
		}
	}

	return c.JSON(fiber.Map{
		"by_status":       byStatus,
		"total_requested": totalRequested,
		"total_completed": totalCompleted,
	})
}
