package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/GraphSentinel/internal/application/analysis"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/GraphSentinel/pkg/errors"
)

// stubService returns a canned result or error for every entity.
type stubService struct {
	result *analysis.Result
	err    error
	lastID string
}

func (s *stubService) AnalyzeEntity(ctx context.Context, entityID string) (*analysis.Result, error) {
	s.lastID = entityID
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newAnalysisRouter(svc analysis.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAnalysisHandler(svc, logging.NewNopLogger())
	r := gin.New()
	r.GET("/api/v1/companies/:id/analysis", h.Analyze)
	return r
}

func TestAnalyze_ReturnsResult(t *testing.T) {
	svc := &stubService{result: &analysis.Result{
		AnalysisID: "a1",
		EntityID:   "ACME-001",
		EntityName: "Acme Corp",
		RiskScore:  0.91,
	}}
	r := newAnalysisRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/companies/ACME-001/analysis", nil)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ACME-001", svc.lastID)

	var body analysis.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a1", body.AnalysisID)
	assert.Equal(t, "Acme Corp", body.EntityName)
	assert.Equal(t, 0.91, body.RiskScore)
}

func TestAnalyze_UnknownEntity(t *testing.T) {
	svc := &stubService{err: errors.EntityNotFound("GHOST")}
	r := newAnalysisRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/companies/GHOST/analysis", nil)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(errors.ErrCodeEntityNotFound), body.Code)
	assert.Contains(t, body.Message, "GHOST")
}

func TestAnalyze_BadRequest(t *testing.T) {
	svc := &stubService{err: errors.InvalidParam("entity id must not be empty")}
	r := newAnalysisRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/companies/%20/analysis", nil)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(errors.ErrCodeBadRequest), body.Code)
}

func TestAnalyze_ServerErrorIsMasked(t *testing.T) {
	svc := &stubService{err: errors.New(errors.ErrCodeNeighborhoodExtraction,
		"bolt handshake failed for neo4j://10.0.0.3:7687")}
	r := newAnalysisRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/companies/ACME-001/analysis", nil)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(errors.ErrCodeNeighborhoodExtraction), body.Code)
	// Internals never reach the client.
	assert.Equal(t, errors.DefaultMessageForCode(errors.ErrCodeNeighborhoodExtraction), body.Message)
	assert.NotContains(t, body.Message, "10.0.0.3")
}

func TestAnalyze_EmptyParamRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAnalysisHandler(&stubService{}, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.Analyze(c)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(errors.ErrCodeBadRequest), body.Code)
}

func TestRespondError_PlainErrorMapsToInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondError(c, context.DeadlineExceeded)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errors.DefaultMessageForCode(errors.GetCode(context.DeadlineExceeded)), body.Message)
}
