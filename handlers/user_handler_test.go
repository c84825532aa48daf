package handlers_test

import (
	"net/http"
	"testing"

	"github.com/earnlang/earnlang/database"
	"github.com/earnlang/earnlang/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfile(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "profiled", 0, false)
	task := createTask(t, "Profile Task", 40, false, 0)
	token := tokenFor(t, user)

	resp := doRequest(t, app, fiber.MethodPost, "/api/tasks/complete/"+task.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "profiled", body["user"].(map[string]interface{})["username"])
	assert.Len(t, body["task_history"], 1)
	assert.Empty(t, body["payout_history"])
}

func TestGetUserStats(t *testing.T) {
	app := setupApp(t)
	user := createUser(t, "tracked", 1000, false)
	task := createTask(t, "Tracked Task", 60, true, 0)
	token := tokenFor(t, user)

	for i := 0; i < 2; i++ {
		resp := doRequest(t, app, fiber.MethodPost, "/api/tasks/complete/"+task.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := doRequest(t, app, fiber.MethodPost, "/api/payouts/request", token, fiber.Map{
		"amount":       50,
		"gcash_number": "09171234567",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodGet, "/api/user/stats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	taskStats := body["task_stats"].(map[string]interface{})
	assert.EqualValues(t, 2, taskStats["total_tasks"])
	assert.EqualValues(t, 120, taskStats["total_points"])
	assert.Len(t, body["payout_stats"], 1)
	assert.Len(t, body["recent_activity"], 2)
}

func TestGetReferralInfo(t *testing.T) {
	app := setupApp(t)
	referrer := createUser(t, "networker", 0, false)
	invitee := createUser(t, "invited", 0, false)

	referral := models.Referral{
		ReferrerID:     referrer.ID,
		ReferredUserID: invitee.ID,
		Status:         "pending",
	}
	require.NoError(t, database.DB.Create(&referral).Error)

	resp := doRequest(t, app, fiber.MethodGet, "/api/user/referral", tokenFor(t, referrer), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, *referrer.ReferralCode, body["referral_code"])
	assert.EqualValues(t, 1, body["referral_count"])

	referred := body["referred_users"].([]interface{})
	require.Len(t, referred, 1)
	entry := referred[0].(map[string]interface{})
	assert.Equal(t, "invited", entry["username"])
	assert.Equal(t, "pending", entry["status"])
}
