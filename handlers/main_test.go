package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/earnlang/earnlang/database"
	"github.com/earnlang/earnlang/models"
	"github.com/earnlang/earnlang/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

// setupApp wires an in-memory database and the full route table so tests
// exercise the same middleware chain as production.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskCompletion{},
		&models.Payout{},
		&models.Referral{},
	))
	database.DB = db

	app := fiber.New()
	routes.AuthRoutes(app)
	routes.UserRoutes(app)
	routes.TaskRoutes(app)
	routes.PayoutRoutes(app)
	routes.AdminRoutes(app)
	return app
}

func createUser(t *testing.T, username string, points int64, admin bool) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	code := strings.ToUpper(username)
	if len(code) > 8 {
		code = code[:8]
	}
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		Password:     string(hashed),
		Points:       points,
		IsAdmin:      admin,
		ReferralCode: &code,
	}
	require.NoError(t, database.DB.Create(&user).Error)
	return &user
}

func createTask(t *testing.T, title string, points int64, repeatable bool, cooldownHours int) *models.Task {
	t.Helper()

	task := models.Task{
		Title:         title,
		Description:   title + " description",
		Type:          "custom",
		Points:        points,
		IsActive:      true,
		IsRepeatable:  repeatable,
		CooldownHours: cooldownHours,
	}
	require.NoError(t, database.DB.Create(&task).Error)
	return &task
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeInto(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func reloadUser(t *testing.T, id uuid.UUID) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, database.DB.First(&user, "id = ?", id).Error)
	return &user
}
