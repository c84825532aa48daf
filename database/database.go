package database

import (
	"fmt"
	"log"

	config "github.com/earnlang/earnlang/configs"
	"github.com/earnlang/earnlang/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:            false,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskCompletion{},
		&models.Payout{},
		&models.Referral{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		Username:   config.Config("ADMIN_USERNAME"),
		Email:      adminEmail,
		Password:   string(hashedPassword),
		IsAdmin:    true,
		IsVerified: true,
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}

func SeedDefaultTasks() {
	var count int64
	if err := DB.Model(&models.Task{}).Count(&count).Error; err != nil {
		log.Fatalf("🔥 Failed to check for existing tasks: %v", err)
		return
	}

	if count > 0 {
		log.Printf("%d tasks already exist, skipping task seed.", count)
		return
	}

	defaultTasks := []models.Task{
		{
			Title:         "Daily Login",
			Description:   "Log in to the platform and earn points for being active",
			Type:          "login",
			Points:        10,
			IsActive:      true,
			IsRepeatable:  true,
			CooldownHours: 24,
		},
		{
			Title:        "Complete Your First Task",
			Description:  "Complete any task to get started with earning points",
			Type:         "custom",
			Points:       50,
			IsActive:     true,
			IsRepeatable: false,
		},
		{
			Title:        "Refer a Friend",
			Description:  "Invite a friend to join EARNLANG and earn bonus points",
			Type:         "referral",
			Points:       100,
			IsActive:     true,
			IsRepeatable: true,
		},
		{
			Title:        "Update Your Profile",
			Description:  "Complete your profile information to earn points",
			Type:         "custom",
			Points:       25,
			IsActive:     true,
			IsRepeatable: false,
		},
		{
			Title:        "Request Your First Payout",
			Description:  "Request a GCash payout to cash out your earnings",
			Type:         "custom",
			Points:       75,
			IsActive:     true,
			IsRepeatable: false,
		},
		{
			Title:         "Stay Active for 7 Days",
			Description:   "Log in daily for 7 consecutive days",
			Type:          "daily",
			Points:        200,
			IsActive:      true,
			IsRepeatable:  true,
			CooldownHours: 168,
		},
		{
			Title:        "Complete 10 Tasks",
			Description:  "Complete 10 different tasks to earn a bonus",
			Type:         "custom",
			Points:       150,
			IsActive:     true,
			IsRepeatable: false,
		},
		{
			Title:         "Share on Social Media",
			Description:   "Share EARNLANG on your social media accounts",
			Type:          "custom",
			Points:        30,
			IsActive:      true,
			IsRepeatable:  true,
			CooldownHours: 24,
		},
	}

	if err := DB.Create(&defaultTasks).Error; err != nil {
		log.Fatalf("🔥 Failed to seed default tasks: %v", err)
		return
	}

	log.Printf("✅ Created %d default tasks", len(defaultTasks))
}
