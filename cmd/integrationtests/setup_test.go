package integrationtests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	account "auction-manager/internal/accountService"
	auction "auction-manager/internal/auctionService"
	bidding "auction-manager/internal/biddingService"
	"auction-manager/internal/config"
	"auction-manager/internal/events"
	item "auction-manager/internal/itemService"
	"auction-manager/internal/metrics"
	notification "auction-manager/internal/notificationService"
	"auction-manager/internal/repository"
	"auction-manager/internal/security"
	"auction-manager/internal/server"
	"auction-manager/internal/storage"
	"auction-manager/services/helpers"
)

// TestApp is the full application wired against an in-memory sqlite database
type TestApp struct {
	Router *gin.Engine
	Hub    *notification.Hub
}

// SetupTestApp initializes the router with every service on a fresh database
func SetupTestApp(t *testing.T) *TestApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.Open(config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	repo := repository.NewGormRepo(db)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	images, err := storage.NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)

	hub := notification.NewHub()
	t.Cleanup(hub.Close)

	tokens := security.NewTokenIssuer(config.AuthConfig{
		JWTSecret: "integration-test-secret",
		Issuer:    "auction-manager",
		TokenTTL:  time.Hour,
	})

	notifications := notification.NewNotificationService(repo, hub, events.LogPublisher{}, m)
	items := item.NewItemService(repo, notifications, images, m, 5<<20)
	router := server.SetupRouter(server.Dependencies{
		Accounts:      account.NewAccountService(repo, tokens),
		Auctions:      auction.NewAuctionService(repo, notifications, items, images, 5<<20),
		Items:         items,
		Bidding:       bidding.NewBiddingService(repo, notifications, m),
		Notifications: notifications,
		Tokens:        tokens,
		Metrics:       m,
		Gatherer:      reg,
	})
	return &TestApp{Router: router, Hub: hub}
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and
// returns the decoded envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := ExecuteRequest(t, router, method, url, token, reqBody)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// Data returns the data object of a successful envelope
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return data
}

// List returns the data array of a successful envelope
func List(t *testing.T, resp map[string]any) []any {
	t.Helper()
	data, ok := resp["data"].([]any)
	require.True(t, ok, "response has no data list: %v", resp)
	return data
}

// RegisterAndLogin creates an account and returns its id and access token
func (a *TestApp) RegisterAndLogin(t *testing.T, username string) (uint, string) {
	t.Helper()
	password := "password-" + username

	_, w := ExecuteRequestAndParse(t, a.Router, http.MethodPost, "/auth/register", "", helpers.RegisterRequest{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: username,
		LastName:  "Tester",
		Password:  password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp, w := ExecuteRequestAndParse(t, a.Router, http.MethodPost, "/auth/login", "", helpers.LoginRequest{
		Username: username,
		Password: password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := Data(t, resp)
	user := session["user"].(map[string]any)
	return uint(user["id"].(float64)), session["token"].(string)
}

// ID reads a numeric id field from decoded JSON
func ID(t *testing.T, obj map[string]any, field string) uint {
	t.Helper()
	v, ok := obj[field].(float64)
	require.True(t, ok, "%s missing in %v", field, obj)
	return uint(v)
}
