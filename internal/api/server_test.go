package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacycle-screening-server/internal/catalog"
	"github.com/lunacycle-screening-server/internal/config"
	"github.com/lunacycle-screening-server/internal/domain"
	"github.com/lunacycle-screening-server/internal/service"
	"github.com/lunacycle-screening-server/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{MaxEntries: 100, TTL: time.Minute},
		RateLimit: config.RateLimitConfig{
			Enabled: false,
		},
		Logging: config.LoggingConfig{Level: "error"},
	}
}

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tmpDir, err := os.MkdirTemp("", "screening-api-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	st, err := store.NewSQLiteStore(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := service.NewScreeningService(logger, catalog.Default(), st, st, st, service.DefaultPolicy())
	return NewServer(testConfig(), logger, svc), st
}

func seedHistory(t *testing.T, st *store.SQLiteStore, userID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	starts := []int{-120, -90, -60, -30}
	for i, d := range starts {
		start := now.AddDate(0, 0, d)
		end := start.AddDate(0, 0, 4)
		require.NoError(t, st.AddCycleRecord(ctx, &domain.CycleRecord{
			ID: string(rune('a' + i)), UserID: userID,
			StartDate: start, EndDate: &end, FlowIntensity: domain.FlowMedium,
		}))
	}

	for i, sym := range []domain.SymptomType{
		domain.SymptomIrregularPeriods, domain.SymptomAcne,
		domain.SymptomExcessHairGrowth, domain.SymptomWeightGain,
	} {
		require.NoError(t, st.AddSymptomEntry(ctx, &domain.SymptomEntry{
			ID: string(rune('s' + i)), UserID: userID,
			Date: now.AddDate(0, 0, -5), SymptomType: sym, Severity: 3,
		}))
	}

	require.NoError(t, st.SetRiskFactors(ctx, userID, []domain.RiskFactor{
		domain.RiskFamilyHistoryPCOS, domain.RiskInsulinResistance,
	}))
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestServer_RunScreening(t *testing.T) {
	s, st := newTestServer(t)
	seedHistory(t, st, "user-1")

	w := doRequest(s, http.MethodPost, "/api/v1/users/user-1/screening")

	require.Equal(t, http.StatusOK, w.Code)
	var result domain.ScreeningResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "user-1", result.UserID)
	require.NotNil(t, result.Phase)
	assert.NotEmpty(t, result.RiskScores)
}

func TestServer_GetScreeningUsesCache(t *testing.T) {
	s, st := newTestServer(t)
	seedHistory(t, st, "user-1")

	// No run yet: nothing cached.
	w := doRequest(s, http.MethodGet, "/api/v1/users/user-1/screening")
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusOK, doRequest(s, http.MethodPost, "/api/v1/users/user-1/screening").Code)

	w = doRequest(s, http.MethodGet, "/api/v1/users/user-1/screening")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_GetPrediction(t *testing.T) {
	s, st := newTestServer(t)
	seedHistory(t, st, "user-1")

	w := doRequest(s, http.MethodGet, "/api/v1/users/user-1/prediction")
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusOK, doRequest(s, http.MethodPost, "/api/v1/users/user-1/screening").Code)

	w = doRequest(s, http.MethodGet, "/api/v1/users/user-1/prediction")
	require.Equal(t, http.StatusOK, w.Code)
	var p domain.CyclePrediction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "user-1", p.UserID)
	assert.False(t, p.NextPeriodStart.IsZero())
}

func TestServer_ListDiagnoses(t *testing.T) {
	s, st := newTestServer(t)
	seedHistory(t, st, "user-1")
	require.Equal(t, http.StatusOK, doRequest(s, http.MethodPost, "/api/v1/users/user-1/screening").Code)

	w := doRequest(s, http.MethodGet, "/api/v1/users/user-1/diagnoses")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Diagnoses []*domain.Diagnosis `json:"diagnoses"`
		Count     int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, len(body.Diagnoses), body.Count)

	// Unknown user gets an empty list, not an error.
	w = doRequest(s, http.MethodGet, "/api/v1/users/nobody/diagnoses")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
}

func TestServer_ReviewLifecycle(t *testing.T) {
	s, st := newTestServer(t)
	ctx := context.Background()
	now := time.Now().UTC()

	d := &domain.Diagnosis{
		ID: "d1", UserID: "user-1", ConditionID: "pcos",
		Score: 0.72, Severity: domain.SeverityModerate, Status: domain.StatusActive,
		CreatedAt: now,
	}
	require.NoError(t, st.Save(ctx, d))

	w := doRequest(s, http.MethodPost, "/api/v1/diagnoses/d1/review")
	require.Equal(t, http.StatusOK, w.Code)
	var reviewed domain.Diagnosis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reviewed))
	assert.Equal(t, domain.StatusReviewed, reviewed.Status)
	assert.True(t, reviewed.Reviewed)

	// A second review attempt conflicts.
	w = doRequest(s, http.MethodPost, "/api/v1/diagnoses/d1/review")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Dismissal still works on a reviewed diagnosis.
	w = doRequest(s, http.MethodDelete, "/api/v1/diagnoses/d1")
	require.Equal(t, http.StatusOK, w.Code)
	var dismissed domain.Diagnosis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dismissed))
	assert.Equal(t, domain.StatusDismissed, dismissed.Status)
}

func TestServer_ReviewNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/v1/diagnoses/missing/review")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, domain.ErrCodeNotFound, apiErr.Code)
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestServer_FollowUpDue(t *testing.T) {
	s, st := newTestServer(t)
	ctx := context.Background()
	now := time.Now().UTC()
	overdue := now.AddDate(0, 0, -2)

	d := &domain.Diagnosis{
		ID: "d1", UserID: "user-1", ConditionID: "pcos",
		Score: 0.72, Severity: domain.SeverityModerate, Status: domain.StatusActive,
		CreatedAt: now.AddDate(0, 0, -32), FollowUpDate: &overdue,
	}
	require.NoError(t, st.Save(ctx, d))

	w := doRequest(s, http.MethodGet, "/api/v1/users/user-1/diagnoses/follow-up")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Diagnoses []*domain.Diagnosis `json:"diagnoses"`
		Count     int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "d1", body.Diagnoses[0].ID)
}

func TestServer_RequestIDPropagation(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "rid-123")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, "rid-123", w.Header().Get("X-Request-ID"))

	// A request without the header gets a generated ID.
	w2 := doRequest(s, http.MethodGet, "/health")
	assert.NotEmpty(t, w2.Header().Get("X-Request-ID"))
}

func TestServer_RateLimit(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tmpDir, err := os.MkdirTemp("", "screening-api-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	st, err := store.NewSQLiteStore(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 2}

	svc := service.NewScreeningService(logger, catalog.Default(), st, st, st, service.DefaultPolicy())
	s := NewServer(cfg, logger, svc)

	codes := make(map[int]int)
	for i := 0; i < 5; i++ {
		codes[doRequest(s, http.MethodGet, "/health").Code]++
	}

	assert.Greater(t, codes[http.StatusTooManyRequests], 0, "burst exhaustion must return 429")
	assert.Greater(t, codes[http.StatusOK], 0)
}
