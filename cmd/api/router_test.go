package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/internal/database"
	"roombooking/internal/domain"
	"roombooking/internal/metrics"
	"roombooking/internal/modules/auth"
	"roombooking/internal/modules/booking"
	"roombooking/internal/notification"
	"roombooking/internal/pkg/clock"
	jwtsvc "roombooking/internal/pkg/jwt"
	"roombooking/internal/repository"
)

type suite struct {
	router *gin.Engine
	tokens *jwtsvc.Service
	users  *repository.UserRepository
	redis  *miniredis.Miniredis
}

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error,omitempty"`
}

func setupSuite(t *testing.T) *suite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, domain.DefaultActiveStatuses.Strings(), repository.Models()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.New("e2e", reg)
	hub := notification.NewHub(zerolog.Nop())
	t.Cleanup(hub.Close)
	tokens := jwtsvc.New("test_secret_key_32_characters_min", time.Hour)

	users := repository.NewUserRepository(db)
	rooms := repository.NewRoomRepository(db)
	clk := clock.NewFake(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	bookings := booking.NewService(repository.NewBookingRepository(db), rooms, users, clk,
		booking.DefaultConfig(), zerolog.Nop(), booking.WithPublisher(hub), booking.WithMetrics(m))

	router := newRouter(routerDeps{
		logger:         zerolog.Nop(),
		db:             db,
		redis:          rdb,
		metrics:        m,
		hub:            hub,
		tokens:         tokens,
		users:          users,
		rooms:          rooms,
		bookings:       bookings,
		metricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	return &suite{router: router, tokens: tokens, users: users, redis: mr}
}

func (s *suite) request(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp testResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func (s *suite) adminToken(t *testing.T) string {
	t.Helper()
	hash, err := auth.HashPassword("admin123", 4)
	require.NoError(t, err)
	admin := &domain.User{Name: "Admin", Email: "admin@example.com", PasswordHash: hash, Role: domain.RoleAdmin}
	require.NoError(t, s.users.Create(context.Background(), admin))
	token, err := s.tokens.GenerateToken(admin.ID, string(admin.Role))
	require.NoError(t, err)
	return token
}

func TestE2E_RegisterRoomBookingFlow(t *testing.T) {
	s := setupSuite(t)

	// register + login
	w, resp := s.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Nok", "email": "nok@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Nok again", "email": "NOK@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, resp = s.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "nok@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var session struct {
		Token string          `json:"token"`
		User  auth.UserPublic `json:"user"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &session))
	assert.Equal(t, "user", session.User.Role)

	w, _ = s.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "nok@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.request(t, http.MethodGet, "/api/v1/users/me", session.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// admin creates a room
	w, _ = s.request(t, http.MethodPost, "/api/v1/rooms", session.Token, gin.H{"name": "Mekong", "capacity": 8})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = s.request(t, http.MethodPost, "/api/v1/rooms", s.adminToken(t), gin.H{"name": "Mekong", "capacity": 8})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Room domain.Room `json:"room"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))

	// user books it
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	w, _ = s.request(t, http.MethodPost, "/api/v1/bookings", session.Token, gin.H{
		"room_id": created.Room.ID, "start_time": start, "end_time": start.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, resp = s.request(t, http.MethodGet, "/api/v1/bookings/my", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Bookings []domain.Booking `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &mine))
	require.Len(t, mine.Bookings, 1)
	assert.Equal(t, domain.StatusBooked, mine.Bookings[0].Status)

	w, _ = s.request(t, http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d", created.Room.ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestE2E_ProtectedRoutesNeedToken(t *testing.T) {
	s := setupSuite(t)

	w, resp := s.request(t, http.MethodGet, "/api/v1/bookings/my", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "AUTH_HEADER_MISSING", resp.Error.Code)

	w, _ = s.request(t, http.MethodGet, "/api/v1/rooms", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestE2E_HealthAndMetrics(t *testing.T) {
	s := setupSuite(t)

	w, _ := s.request(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"redis":"ok"`)

	s.redis.Close()
	w, _ = s.request(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, _ = s.request(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "e2e_http_requests_total")
}
