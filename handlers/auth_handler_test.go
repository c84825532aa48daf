package handlers_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/earnlang/earnlang/database"
	"github.com/earnlang/earnlang/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "newcomer",
		"email":    "newcomer@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])
	registered := body["user"].(map[string]interface{})
	assert.Equal(t, "newcomer", registered["username"])
	assert.EqualValues(t, 0, registered["points"])

	var user models.User
	require.NoError(t, database.DB.Where("email = ?", "newcomer@example.com").First(&user).Error)
	require.NotNil(t, user.ReferralCode)
	assert.Len(t, *user.ReferralCode, 8)
	assert.NotEqual(t, "secret123", user.Password)

	resp = doRequest(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "newcomer@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decodeBody(t, resp)["token"])

	assert.NotNil(t, reloadUser(t, user.ID).LastLoginAt)
}

func TestRegisterDuplicate(t *testing.T) {
	app := setupApp(t)
	createUser(t, "taken", 0, false)

	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "somebody",
		"email":    "taken@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email already registered", decodeBody(t, resp)["error"])

	resp = doRequest(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "taken",
		"email":    "other@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "username already taken", decodeBody(t, resp)["error"])
}

func TestRegisterConcurrentDuplicate(t *testing.T) {
	app := setupApp(t)

	// Two registrations racing on the same email: exactly one account wins,
	// the loser gets a conflict whether the existence check or the unique
	// constraint catches it.
	results := make(chan int, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			resp := doRequest(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
				"username": fmt.Sprintf("contender%d", n),
				"email":    "contested@example.com",
				"password": "secret123",
			})
			results <- resp.StatusCode
		}(i)
	}
	wg.Wait()
	close(results)

	statuses := make(map[int]int)
	for code := range results {
		statuses[code]++
	}
	assert.Equal(t, 1, statuses[http.StatusCreated])
	assert.Equal(t, 1, statuses[http.StatusConflict])

	var count int64
	database.DB.Model(&models.User{}).Where("email = ?", "contested@example.com").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestRegisterValidation(t *testing.T) {
	app := setupApp(t)

	cases := []struct {
		name string
		body fiber.Map
	}{
		{"short username", fiber.Map{"username": "ab", "email": "a@example.com", "password": "secret123"}},
		{"non alphanumeric username", fiber.Map{"username": "bad name!", "email": "a@example.com", "password": "secret123"}},
		{"invalid email", fiber.Map{"username": "gooduser", "email": "not-an-email", "password": "secret123"}},
		{"short password", fiber.Map{"username": "gooduser", "email": "a@example.com", "password": "12345"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodPost, "/api/auth/register", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestRegisterWithReferralCode(t *testing.T) {
	app := setupApp(t)
	referrer := createUser(t, "sponsor", 0, false)

	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username":      "invitee",
		"email":         "invitee@example.com",
		"password":      "secret123",
		"referral_code": *referrer.ReferralCode,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var referral models.Referral
	require.NoError(t, database.DB.Where("referrer_id = ?", referrer.ID).First(&referral).Error)
	assert.Equal(t, "pending", referral.Status)
}

func TestLoginFailures(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "lockedout", 0, false)

	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    user.Email,
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	require.NoError(t, database.DB.Model(user).UpdateColumn("is_banned", true).Error)
	resp = doRequest(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    user.Email,
		"password": "password123",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Account is banned", decodeBody(t, resp)["error"])
}

func TestGetCurrentUser(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "whoami", 250, false)

	resp := doRequest(t, app, fiber.MethodGet, "/api/auth/me", tokenFor(t, user), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "whoami", body["username"])
	assert.EqualValues(t, 250, body["points"])
	// The password hash never leaks.
	_, exposed := body["password"]
	assert.False(t, exposed)

	resp = doRequest(t, app, fiber.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPasswordResetFlow(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "forgetful", 0, false)

	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/forgot-password", "", fiber.Map{
		"email": user.Email,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reloaded := reloadUser(t, user.ID)
	require.NotNil(t, reloaded.ResetPasswordToken)
	require.NotNil(t, reloaded.ResetPasswordTokenExpiresAt)

	resp = doRequest(t, app, fiber.MethodPost, "/api/auth/reset-password", "", fiber.Map{
		"token":        *reloaded.ResetPasswordToken,
		"new_password": "brandnew456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Old password no longer works, new one does, and the token is spent.
	resp = doRequest(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    user.Email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    user.Email,
		"password": "brandnew456",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Nil(t, reloadUser(t, user.ID).ResetPasswordToken)
}

func TestPasswordResetExpiredToken(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "tooslow", 0, false)

	token := "expiredtokenvalue"
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, database.DB.Model(user).Updates(map[string]interface{}{
		"reset_password_token":            token,
		"reset_password_token_expires_at": expired,
	}).Error)

	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/reset-password", "", fiber.Map{
		"token":        token,
		"new_password": "brandnew456",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid or expired reset token", decodeBody(t, resp)["error"])
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	app := setupApp(t)

	// Response stays neutral so the endpoint cannot be used to probe accounts.
	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/forgot-password", "", fiber.Map{
		"email": "nosuchuser@example.com",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
