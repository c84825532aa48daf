package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/earnlang/earnlang/database"
	"github.com/earnlang/earnlang/models"
	"github.com/earnlang/earnlang/notifications"
	"github.com/earnlang/earnlang/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func GetDashboardStats(c *fiber.Ctx) error {
	var totalUsers, activeTasks, pendingPayouts int64
	database.DB.Model(&models.User{}).Count(&totalUsers)
	database.DB.Model(&models.Task{}).Where("is_active = ?", true).Count(&activeTasks)
	database.DB.Model(&models.Payout{}).Where("status = ?", models.PayoutStatusPending).Count(&pendingPayouts)

	var totalPoints int64
	database.DB.Model(&models.User{}).Select("COALESCE(SUM(points), 0)").Row().Scan(&totalPoints)

	startOfDay := time.Now().Truncate(24 * time.Hour)
	var todayCompletions, todayPayouts int64
	database.DB.Model(&models.TaskCompletion{}).Where("completed_at >= ?", startOfDay).Count(&todayCompletions)
	database.DB.Model(&models.Payout{}).Where("requested_at >= ?", startOfDay).Count(&todayPayouts)

	return c.JSON(fiber.Map{
		"total_users":       totalUsers,
		"active_tasks":      activeTasks,
		"pending_payouts":   pendingPayouts,
		"total_points":      totalPoints,
		"today_completions": todayCompletions,
		"today_payouts":     todayPayouts,
	})
}

func GetRecentActivity(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	var completions []models.TaskCompletion
	err := database.DB.Preload("User").Preload("Task").
		Order("completed_at desc").
		Limit(limit).
		Find(&completions).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load activity"})
	}

	activity := make([]fiber.Map, 0, len(completions))
	for _, item := range completions {
		activity = append(activity, fiber.Map{
			"type":        "task_complete",
			"title":       fmt.Sprintf("%s completed a task", item.User.Username),
			"description": fmt.Sprintf("Completed %q for %d points", item.Task.Title, item.PointsEarned),
			"timestamp":   item.CompletedAt,
		})
	}

	return c.JSON(activity)
}

func GetAllUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	search := strings.TrimSpace(c.Query("search"))
	status := c.Query("status")
	offset := (page - 1) * limit

	query := database.DB.Model(&models.User{})
	countQuery := database.DB.Model(&models.User{})

	if search != "" {
		searchTerm := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", searchTerm, searchTerm)
		countQuery = countQuery.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", searchTerm, searchTerm)
	}

	switch status {
	case "banned":
		query = query.Where("is_banned = ?", true)
		countQuery = countQuery.Where("is_banned = ?", true)
	case "active":
		query = query.Where("is_banned = ?", false)
		countQuery = countQuery.Where("is_banned = ?", false)
	}

	var total int64
	var users []models.User
	countQuery.Count(&total)
	query.Order("created_at desc").Offset(offset).Limit(limit).Find(&users)

	return c.JSON(fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func GetUserDetails(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var completions []models.TaskCompletion
	database.DB.Preload("Task").Where("user_id = ?", user.ID).
		Order("completed_at desc").Limit(20).Find(&completions)

	var payouts []models.Payout
	database.DB.Where("user_id = ?", user.ID).
		Order("requested_at desc").Limit(10).Find(&payouts)

	return c.JSON(fiber.Map{
		"user":             user,
		"task_completions": completions,
		"payouts":          payouts,
	})
}

type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=20,alphanum"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Points   *int64  `json:"points" validate:"omitempty,gte=0"`
	IsBanned *bool   `json:"is_banned"`
	IsAdmin  *bool   `json:"is_admin"`
}

func UpdateUser(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	wasBanned := user.IsBanned

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Points != nil {
		user.Points = *req.Points
	}
	if req.IsBanned != nil {
		user.IsBanned = *req.IsBanned
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}

	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}

	if !wasBanned && user.IsBanned {
		go notifications.SendEmail(
			user.Username,
			user.Email,
			"Your EARNLANG Account Has Been Suspended",
			"<h1>Account Suspended</h1><p>Your account has been suspended by our team. Contact support if you believe this is a mistake.</p>",
		)
	}

	return c.JSON(fiber.Map{"message": "User updated successfully", "user": user})
}

type TaskRequest struct {
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description" validate:"required"`
	Type          string `json:"type" validate:"omitempty,oneof=login referral daily custom"`
	Points        int64  `json:"points" validate:"required,gt=0"`
	IsActive      *bool  `json:"is_active"`
	IsRepeatable  bool   `json:"is_repeatable"`
	CooldownHours int    `json:"cooldown_hours" validate:"gte=0"`
}

func AdminListTasks(c *fiber.Ctx) error {
	var tasks []models.Task
	database.DB.Order("created_at desc").Find(&tasks)
	return c.JSON(tasks)
}

func CreateTask(c *fiber.Ctx) error {
	admin := c.Locals("adminUser").(*models.User)

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	taskType := req.Type
	if taskType == "" {
		taskType = "custom"
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	task := models.Task{
		Title:         req.Title,
		Description:   req.Description,
		Type:          taskType,
		Points:        req.Points,
		IsActive:      isActive,
		IsRepeatable:  req.IsRepeatable,
		CooldownHours: req.CooldownHours,
		CreatedBy:     admin.Username,
	}

	if err := database.DB.Create(&task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create task"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Task created successfully", "task": task})
}

func UpdateTask(c *fiber.Ctx) error {
	taskID := c.Params("taskId")

	var task models.Task
	if err := database.DB.First(&task, "id = ?", taskID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	task.Title = req.Title
	task.Description = req.Description
	if req.Type != "" {
		task.Type = req.Type
	}
	task.Points = req.Points
	if req.IsActive != nil {
		task.IsActive = *req.IsActive
	}
	task.IsRepeatable = req.IsRepeatable
	task.CooldownHours = req.CooldownHours

	if err := database.DB.Save(&task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update task"})
	}

	return c.JSON(fiber.Map{"message": "Task updated successfully", "task": task})
}

// DeleteTask soft-deletes; completion ledger rows keep their task reference.
func DeleteTask(c *fiber.Ctx) error {
	taskID := c.Params("taskId")

	result := database.DB.Delete(&models.Task{}, "id = ?", taskID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete task"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}

	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}

func AdminListPayouts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	status := c.Query("status")
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Payout{})
	countQuery := database.DB.Model(&models.Payout{})

	if status != "" {
		query = query.Where("status = ?", status)
		countQuery = countQuery.Where("status = ?", status)
	}

	var total int64
	var payouts []models.Payout
	countQuery.Count(&total)
	query.Order("requested_at desc").Offset(offset).Limit(limit).Preload("User").Find(&payouts)

	return c.JSON(fiber.Map{
		"payouts": payouts,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

type ProcessPayoutRequest struct {
	Notes string `json:"notes"`
}

func ApprovePayout(c *fiber.Ctx) error {
	admin := c.Locals("adminUser").(*models.User)
	payoutID := c.Params("payoutId")

	var req ProcessPayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	var payout models.Payout
	if err := database.DB.Preload("User").First(&payout, "id = ?", payoutID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payout not found"})
	}

	now := time.Now()
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payout{}).
			Where("id = ? AND status = ?", payout.ID, models.PayoutStatusPending).
			Updates(map[string]interface{}{
				"status":       models.PayoutStatusCompleted,
				"processed_at": now,
				"processed_by": admin.ID,
				"notes":        req.Notes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPayoutNotPending
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, errPayoutNotPending) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payout is not pending"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to approve payout"})
	}

	payout.Status = models.PayoutStatusCompleted
	payout.ProcessedAt = &now
	payout.ProcessedBy = &admin.ID
	payout.Notes = &req.Notes

	websocket.Notify(payout.UserID, "payout_completed", fiber.Map{
		"payout_id": payout.ID,
		"amount":    payout.Amount,
	})

	go notifications.SendEmail(
		payout.User.Username,
		payout.User.Email,
		"Your Payout Has Been Processed",
		fmt.Sprintf("<h1>Payout Processed</h1><p>Hello %s,</p><p>Your payout of ₱%.2f has been sent to your GCash account %s.</p>", payout.User.Username, payout.Amount, payout.GcashNumber),
	)

	return c.JSON(fiber.Map{"message": "Payout approved successfully", "payout": payout})
}

func RejectPayout(c *fiber.Ctx) error {
	admin := c.Locals("adminUser").(*models.User)
	payoutID := c.Params("payoutId")

	var req ProcessPayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	var payout models.Payout
	if err := database.DB.Preload("User").First(&payout, "id = ?", payoutID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payout not found"})
	}

	now := time.Now()
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payout{}).
			Where("id = ? AND status = ?", payout.ID, models.PayoutStatusPending).
			Updates(map[string]interface{}{
				"status":       models.PayoutStatusRejected,
				"processed_at": now,
				"processed_by": admin.ID,
				"notes":        req.Notes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPayoutNotPending
		}

		// Points debited at request time flow back on the negative outcome.
		return tx.Model(&models.User{}).
			Where("id = ?", payout.UserID).
			UpdateColumn("points", gorm.Expr("points + ?", payout.PointsUsed)).Error
	})

	if err != nil {
		if errors.Is(err, errPayoutNotPending) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payout is not pending"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reject payout"})
	}

	payout.Status = models.PayoutStatusRejected
	payout.ProcessedAt = &now
	payout.ProcessedBy = &admin.ID
	payout.Notes = &req.Notes

	websocket.Notify(payout.UserID, "payout_rejected", fiber.Map{
		"payout_id":       payout.ID,
		"points_refunded": payout.PointsUsed,
	})

	go notifications.SendEmail(
		payout.User.Username,
		payout.User.Email,
		"Update on Your Payout Request",
		fmt.Sprintf("<h1>Payout Request Update</h1><p>Hello %s,</p><p>Your payout request for ₱%.2f was rejected and %d points have been returned to your balance.</p><p><b>Notes:</b> %s</p>", payout.User.Username, payout.Amount, payout.PointsUsed, req.Notes),
	)

	return c.JSON(fiber.Map{"message": "Payout rejected and points refunded", "payout": payout})
}

func GetPlatformStats(c *fiber.Ctx) error {
	var totalUsers, verifiedUsers, bannedUsers int64
	database.DB.Model(&models.User{}).Count(&totalUsers)
	database.DB.Model(&models.User{}).Where("is_verified = ?", true).Count(&verifiedUsers)
	database.DB.Model(&models.User{}).Where("is_banned = ?", true).Count(&bannedUsers)

	var totalTasks, activeTasks, totalCompletions int64
	database.DB.Model(&models.Task{}).Count(&totalTasks)
	database.DB.Model(&models.Task{}).Where("is_active = ?", true).Count(&activeTasks)
	database.DB.Model(&models.TaskCompletion{}).Count(&totalCompletions)

	var totalPayouts, pendingPayouts, completedPayouts int64
	database.DB.Model(&models.Payout{}).Count(&totalPayouts)
	database.DB.Model(&models.Payout{}).Where("status = ?", models.PayoutStatusPending).Count(&pendingPayouts)
	database.DB.Model(&models.Payout{}).Where("status = ?", models.PayoutStatusCompleted).Count(&completedPayouts)

	var pointsEarned int64
	database.DB.Model(&models.User{}).Select("COALESCE(SUM(total_points_earned), 0)").Row().Scan(&pointsEarned)

	var amountPaid float64
	database.DB.Model(&models.Payout{}).
		Where("status = ?", models.PayoutStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&amountPaid)

	return c.JSON(fiber.Map{
		"users": fiber.Map{
			"total":    totalUsers,
			"verified": verifiedUsers,
			"banned":   bannedUsers,
		},
		"tasks": fiber.Map{
			"total":       totalTasks,
			"active":      activeTasks,
			"completions": totalCompletions,
		},
		"payouts": fiber.Map{
			"total":     totalPayouts,
			"pending":   pendingPayouts,
			"completed": completedPayouts,
		},
		"points": fiber.Map{
			"earned": pointsEarned,
			"paid":   amountPaid,
		},
	})
}

func GeneratePayoutReport(c *fiber.Ctx) error {
	startDateStr := c.Query("start_date", time.Now().AddDate(0, -1, 0).Format("2006-01-02"))
	endDateStr := c.Query("end_date", time.Now().Format("2006-01-02"))

	startDate, err := time.Parse("2006-01-02", startDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_date format. Use YYYY-MM-DD."})
	}
	endDate, err := time.Parse("2006-01-02", endDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_date format. Use YYYY-MM-DD."})
	}
	endDate = endDate.Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	var payouts []models.Payout
	database.DB.
		Preload("User").
		Where("requested_at BETWEEN ? AND ?", startDate, endDate).
		Order("requested_at desc").
		Find(&payouts)

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	headers := []string{"Payout ID", "Requested", "Username", "GCash Number", "Amount", "Points Used", "Status", "Processed"}
	if err := w.Write(headers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV header"})
	}

	for _, p := range payouts {
		processed := ""
		if p.ProcessedAt != nil {
			processed = p.ProcessedAt.Format("2006-01-02 15:04")
		}

		row := []string{
			p.ID.String(),
			p.RequestedAt.Format("2006-01-02 15:04"),
			p.User.Username,
			p.GcashNumber,
			fmt.Sprintf("%.2f", p.Amount),
			strconv.FormatInt(p.PointsUsed, 10),
			p.Status,
			processed,
		}
		if err := w.Write(row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV row"})
		}
	}
	w.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"payouts_%s_to_%s.csv\"", startDate.Format("2006-01-02"), endDate.Format("2006-01-02")))

	return c.Send(b.Bytes())
}
