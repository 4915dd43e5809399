package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/787516/Matrimonial/internal/config"
	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/internal/repositories"
	"github.com/787516/Matrimonial/internal/security"
	"github.com/787516/Matrimonial/internal/services"
	"github.com/787516/Matrimonial/internal/testutil"
	"github.com/787516/Matrimonial/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type discardNotifier struct{}

func (discardNotifier) Notify(_ context.Context, _, _ uint, _, _ string, _ uint) {}

type apiFixture struct {
	db     *gorm.DB
	router *gin.Engine
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	testutil.SeedPlans(t, db)

	cfg := &config.Config{JWTSecret: testSecret, ChatGatingPolicy: config.ChatGatingHybrid}
	relationships := repositories.NewRelationshipRepository(db)
	profiles := repositories.NewProfileRepository(db)
	users := repositories.NewUserRepository(db)
	subscriptions := repositories.NewSubscriptionRepository(db)
	activities := repositories.NewActivityRepository(db)

	paging := services.Paging{DefaultLimit: 20, MaxLimit: 100}
	notifier := discardNotifier{}
	scorer := services.NewScorer()
	exclusions := services.NewExclusionBuilder(relationships)
	ledger := services.NewLedger(relationships, users, notifier)
	guard := services.NewChatGuard(cfg.ChatGatingPolicy, ledger, subscriptions)
	feed := services.NewFeedService(profiles, exclusions, services.NewCandidateFilter(profiles, relationships), scorer, paging)

	matchSvc := services.NewMatchService(services.MatchServiceDeps{
		Ledger: ledger, Feed: feed, Guard: guard, Exclusions: exclusions, Scorer: scorer,
		Profiles: profiles, Requests: relationships, Users: users, Notifier: notifier, Paging: paging,
	})
	h := NewHandlerManager(cfg, matchSvc, services.NewNotificationService(activities, paging), users, nil)

	return &apiFixture{db: db, router: h.NewRouter()}
}

func (f *apiFixture) do(t *testing.T, method, path string, userID uint, body interface{}) (*httptest.ResponseRecorder, utils.Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := security.GenerateJWT(userID, "", testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var resp utils.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	w, resp := f.do(t, http.MethodGet, "/health", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", resp.Code)
}

func TestAPI_RequiresAuth(t *testing.T) {
	f := newAPIFixture(t)

	w, resp := f.do(t, http.MethodGet, "/api/v1/matches/feed", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", resp.Code)
}

func TestAPI_InterestFlow(t *testing.T) {
	f := newAPIFixture(t)

	a := testutil.CreateMember(t, f.db, "asha", models.GenderFemale, testutil.WithReligion("Hindu"))
	b := testutil.CreateMember(t, f.db, "bharat", models.GenderMale, testutil.WithReligion("Hindu"))

	w, _ := f.do(t, http.MethodGet, "/api/v1/matches/feed", a.User.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sameReligion"`)

	w, resp := f.do(t, http.MethodPost, "/api/v1/matches/interest", a.User.ID, gin.H{"receiverId": b.User.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := resp.Data.(map[string]interface{})
	requestID := uint(data["id"].(float64))
	assert.Equal(t, "pending", data["status"])

	w, resp = f.do(t, http.MethodPost, "/api/v1/matches/interest", b.User.ID, gin.H{"receiverId": a.User.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_EXISTS", resp.Code)

	w, resp = f.do(t, http.MethodPost, "/api/v1/matches/interest", a.User.ID, gin.H{"receiverId": a.User.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "SELF_REFERENCE", resp.Code)

	w, _ = f.do(t, http.MethodPost, "/api/v1/matches/interest", a.User.ID, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := fmt.Sprintf("/api/v1/matches/requests/%d", requestID)
	w, resp = f.do(t, http.MethodPatch, path, a.User.ID, gin.H{"action": "Accepted"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", resp.Code)

	w, _ = f.do(t, http.MethodGet, "/api/v1/matches/requests/pending", b.User.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w, _ = f.do(t, http.MethodPatch, path, b.User.ID, gin.H{"action": "Accepted"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp = f.do(t, http.MethodPatch, path, b.User.ID, gin.H{"action": "rejected"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", resp.Code)

	// free plan has no chat
	w, resp = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/matches/chat-access/%d", a.User.ID), b.User.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "NOT_ENTITLED", resp.Code)

	w, _ = f.do(t, http.MethodGet, "/api/v1/matches/dashboard-stats", b.User.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":{"pending":0,"accepted":1,"rejected":0}`)

	w, resp = f.do(t, http.MethodGet, "/api/v1/matches/dashboard-stats/requests?type=sideways&status=pending", b.User.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
}

func TestAPI_BlockAndUnblock(t *testing.T) {
	f := newAPIFixture(t)

	a := testutil.CreateMember(t, f.db, "asha", models.GenderFemale)
	b := testutil.CreateMember(t, f.db, "bharat", models.GenderMale)

	w, _ := f.do(t, http.MethodPost, "/api/v1/matches/block", a.User.ID, gin.H{"targetId": b.User.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/matches/view/%d", a.User.ID), b.User.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "BLOCKED", resp.Code)

	w, _ = f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/matches/block/%d", b.User.ID), a.User.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/matches/block/%d", b.User.ID), a.User.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Code)

	w, _ = f.do(t, http.MethodDelete, "/api/v1/matches/block/abc", a.User.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_Notifications(t *testing.T) {
	f := newAPIFixture(t)

	a := testutil.CreateMember(t, f.db, "asha", models.GenderFemale)
	activity := models.Activity{UserID: a.User.ID, ActivityType: models.ActivityProfileViewed, Message: "someone viewed your profile"}
	require.NoError(t, f.db.Create(&activity).Error)

	w, _ := f.do(t, http.MethodGet, "/api/v1/notifications/unread-count", a.User.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread":1`)

	w, _ = f.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/notifications/%d/read", activity.ID), a.User.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(t, http.MethodGet, "/api/v1/notifications?unread=true", a.User.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":0`)

	w, _ = f.do(t, http.MethodPut, "/api/v1/me/telegram", a.User.ID, gin.H{"chatId": 123456})
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, f.db.First(&user, a.User.ID).Error)
	assert.EqualValues(t, 123456, user.TelegramChatID)
}
