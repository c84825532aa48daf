package handlers

import (
	"errors"
	"time"

	"github.com/earnlang/earnlang/database"
	"github.com/earnlang/earnlang/models"
	"github.com/earnlang/earnlang/services"
	"github.com/earnlang/earnlang/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	errTaskAlreadyCompleted = errors.New("task already completed")
	errTaskOnCooldown       = errors.New("task is on cooldown")
)

type TaskResponse struct {
	models.Task
	Completed bool `json:"completed"`
}

func ListTasks(c *fiber.Ctx) error {
	uid := UID(c)

	var tasks []models.Task
	if err := database.DB.Where("is_active = ?", true).Order("created_at asc").Find(&tasks).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load tasks"})
	}

	var completedIDs []string
	database.DB.Model(&models.TaskCompletion{}).
		Where("user_id = ?", uid).
		Distinct("task_id").
		Pluck("task_id", &completedIDs)

	completed := make(map[string]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}

	response := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, TaskResponse{
			Task:      task,
			Completed: completed[task.ID.String()],
		})
	}

	return c.JSON(response)
}

func CompleteTask(c *fiber.Ctx) error {
	uid := UID(c)
	taskID := c.Params("taskId")

	var task models.Task
	if err := database.DB.First(&task, "id = ?", taskID).Error; err != nil || !task.IsActive {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}

	var priorCompletions int64
	var newBalance int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TaskCompletion{}).Where("user_id = ?", uid).Count(&priorCompletions).Error; err != nil {
			return err
		}

		var last models.TaskCompletion
		err := tx.Where("user_id = ? AND task_id = ?", uid, task.ID).Order("completed_at desc").First(&last).Error
		if err == nil {
			if !task.IsRepeatable {
				return errTaskAlreadyCompleted
			}
			if task.CooldownHours > 0 {
				cooldown := time.Duration(task.CooldownHours) * time.Hour
				if time.Since(last.CompletedAt) < cooldown {
					return errTaskOnCooldown
				}
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		completion := models.TaskCompletion{
			UserID:       uid,
			TaskID:       task.ID,
			PointsEarned: task.Points,
			CompletedAt:  time.Now(),
		}
		if err := tx.Create(&completion).Error; err != nil {
			return err
		}

		res := tx.Model(&models.User{}).
			Where("id = ?", uid).
			Updates(map[string]interface{}{
				"points":              gorm.Expr("points + ?", task.Points),
				"total_points_earned": gorm.Expr("total_points_earned + ?", task.Points),
			})
		if res.Error != nil {
			return res.Error
		}

		var user models.User
		if err := tx.First(&user, "id = ?", uid).Error; err != nil {
			return err
		}
		newBalance = user.Points

		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, errTaskAlreadyCompleted):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Task already completed"})
		case errors.Is(err, errTaskOnCooldown):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Task is on cooldown, try again later"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete task"})
		}
	}

	if priorCompletions == 0 {
		go services.CompleteReferralIfApplicable(uid)
	}

	websocket.Notify(uid, "task_completed", fiber.Map{
		"task_id":       task.ID,
		"title":         task.Title,
		"points_earned": task.Points,
		"new_balance":   newBalance,
	})

	return c.JSON(fiber.Map{
		"message":       "Task completed successfully!",
		"points_earned": task.Points,
		"new_balance":   newBalance,
	})
}

func GetTaskStats(c *fiber.Ctx) error {
	uid := UID(c)

	var totalCompletions int64
	database.DB.Model(&models.TaskCompletion{}).Where("user_id = ?", uid).Count(&totalCompletions)

	var totalPointsEarned int64
	database.DB.Model(&models.TaskCompletion{}).
		Where("user_id = ?", uid).
		Select("COALESCE(SUM(points_earned), 0)").
		Row().Scan(&totalPointsEarned)

	startOfDay := time.Now().Truncate(24 * time.Hour)
	var todayCompletions int64
	database.DB.Model(&models.TaskCompletion{}).
		Where("user_id = ? AND completed_at >= ?", uid, startOfDay).
		Count(&todayCompletions)

	return c.JSON(fiber.Map{
		"total_completions":   totalCompletions,
		"total_points_earned": totalPointsEarned,
		"today_completions":   todayCompletions,
	})
}
