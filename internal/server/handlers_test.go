package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/spacesedan/sentiboard/config"
	"github.com/spacesedan/sentiboard/internal/dashboard"
	"github.com/spacesedan/sentiboard/internal/export"
	"github.com/spacesedan/sentiboard/internal/history"
	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wordAnalyzer(text string) models.PolarityScore {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "good"):
		return models.PolarityScore{Compound: 0.6, Positive: 0.6, Neutral: 0.4}
	case strings.Contains(lower, "bad"):
		return models.PolarityScore{Compound: -0.6, Negative: 0.6, Neutral: 0.4}
	default:
		return models.NeutralScore()
	}
}

func newTestDashboard() *dashboard.Service {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	return dashboard.NewService(sentiment.AnalyzerFunc(wordAnalyzer), history.NewStore(clock), sentiment.DefaultThresholds)
}

func newTestServer(t *testing.T, dash Dashboard, opts ...Option) *Server {
	t.Helper()
	return NewServer(&config.Config{Port: "0"}, dash, opts...)
}

func serve(srv *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func analyze(t *testing.T, srv *Server, text string) dashboard.Analysis {
	t.Helper()
	body, err := json.Marshal(analyzeRequest{Text: text})
	require.NoError(t, err)

	rec := serve(srv, http.MethodPost, "/api/analyze", echo.MIMEApplicationJSON, string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var analysis dashboard.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	return analysis
}

func TestHandleLiveness(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, newTestDashboard())
	err := srv.handleLiveness(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleReadiness(t *testing.T) {
	var consumer, valkey atomic.Bool
	srv := newTestServer(t, newTestDashboard(),
		WithReadinessCheck("kafka_consumer", &consumer),
		WithReadinessCheck("valkey", &valkey),
	)

	rec := serve(srv, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "kafka_consumer")

	consumer.Store(true)
	rec = serve(srv, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "valkey")

	valkey.Store(true)
	rec = serve(srv, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleAnalyze(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantLabel   models.SentimentLabel
	}{
		{name: "positive json", contentType: echo.MIMEApplicationJSON, body: `{"text":"A good day."}`, wantStatus: http.StatusCreated, wantLabel: models.SentimentPositive},
		{name: "negative form", contentType: echo.MIMEApplicationForm, body: "text=bad+news", wantStatus: http.StatusCreated, wantLabel: models.SentimentNegative},
		{name: "blank", contentType: echo.MIMEApplicationJSON, body: `{"text":"   "}`, wantStatus: http.StatusBadRequest},
		{name: "missing text", contentType: echo.MIMEApplicationJSON, body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "malformed", contentType: echo.MIMEApplicationJSON, body: `{"text":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dash := newTestDashboard()
			srv := newTestServer(t, dash)

			rec := serve(srv, http.MethodPost, "/api/analyze", tt.contentType, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusCreated {
				assert.Empty(t, dash.History())
				return
			}
			var analysis dashboard.Analysis
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
			assert.Equal(t, tt.wantLabel, analysis.Label)
			assert.Equal(t, 1, analysis.Record.ID)
		})
	}
}

func TestReadEndpoints_EmptyHistory(t *testing.T) {
	srv := newTestServer(t, newTestDashboard())

	for _, path := range []string{"/api/latest", "/api/overview", "/api/trends", "/api/insights", "/api/history", "/api/export.csv"} {
		t.Run(path, func(t *testing.T) {
			rec := serve(srv, http.MethodGet, path, "", "")

			assert.Equal(t, http.StatusOK, rec.Code)
			var body emptyResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.True(t, body.Empty)
		})
	}
}

func TestReadEndpoints_AfterAnalyses(t *testing.T) {
	srv := newTestServer(t, newTestDashboard())
	analyze(t, srv, "A good start. Then something bad happened.")
	analyze(t, srv, "Nothing much.")

	rec := serve(srv, http.MethodGet, "/api/overview", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var overview dashboard.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	assert.Equal(t, 2, overview.Summary.Total)
	assert.Equal(t, 1, overview.Summary.Counts.Positive)
	assert.Equal(t, 1, overview.Summary.Counts.Neutral)
	assert.Len(t, overview.Recent, 2)

	rec = serve(srv, http.MethodGet, "/api/trends", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var trends dashboard.Trends
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trends))
	assert.Len(t, trends.Points, 2)

	rec = serve(srv, http.MethodGet, "/api/latest", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var latest dashboard.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, "Nothing much.", latest.Record.Text)

	rec = serve(srv, http.MethodGet, "/api/insights", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var insights dashboard.Insights
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &insights))
	require.NotEmpty(t, insights.Rankings.MostPositive)
	assert.Equal(t, "A good start.", insights.Rankings.MostPositive[0].Sentence)
}

func TestExportImportCSV(t *testing.T) {
	source := newTestServer(t, newTestDashboard())
	analyze(t, source, "good, \"quoted\" text")
	analyze(t, source, "bad\nmultiline")

	rec := serve(source, http.MethodGet, "/api/export.csv", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), export.FileName)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "text,compound,positive,negative,neutral,timestamp\n"))

	target := newTestDashboard()
	rec = serve(newTestServer(t, target), http.MethodPost, "/api/import", "text/csv", rec.Body.String())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"imported":2}`, rec.Body.String())

	assert.Equal(t, source.dashboard.History(), target.History())
}

func TestImportCSV_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "bad header", body: "words,score\nhi,0.1\n", wantStatus: http.StatusBadRequest},
		{name: "bad float", body: "text,compound,positive,negative,neutral,timestamp\nhi,abc,0,0,1,2026-03-14T09:30:00Z\n", wantStatus: http.StatusBadRequest},
		{name: "blank text after a valid row", body: "text,compound,positive,negative,neutral,timestamp\nfirst,0,0,0,1,2026-03-14T09:30:00Z\n\"\",0,0,0,1,2026-03-14T09:31:00Z\n", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dash := newTestDashboard()
			rec := serve(newTestServer(t, dash), http.MethodPost, "/api/import", "text/csv", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, dash.History())
		})
	}
}

type fakeExporter struct {
	exports map[string][]models.AnalysisRecord
}

func (f *fakeExporter) Export(_ context.Context, records []models.AnalysisRecord) (string, error) {
	id := "export-1"
	f.exports[id] = records
	return id, nil
}

func (f *fakeExporter) Load(_ context.Context, id string) ([]models.AnalysisRecord, error) {
	return f.exports[id], nil
}

func TestDynamoEndpoints(t *testing.T) {
	exporter := &fakeExporter{exports: map[string][]models.AnalysisRecord{}}
	srv := newTestServer(t, newTestDashboard(), WithExporter(exporter))

	rec := serve(srv, http.MethodPost, "/api/export/dynamodb", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"empty":true`)

	analyze(t, srv, "good")
	rec = serve(srv, http.MethodPost, "/api/export/dynamodb", "", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"export_id":"export-1","count":1}`, rec.Body.String())

	target := newTestDashboard()
	restore := newTestServer(t, target, WithExporter(exporter))
	rec = serve(restore, http.MethodPost, "/api/import/dynamodb/export-1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, srv.dashboard.History(), target.History())

	rec = serve(restore, http.MethodPost, "/api/import/dynamodb/missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDynamoEndpoints_DisabledWithoutExporter(t *testing.T) {
	srv := newTestServer(t, newTestDashboard())

	rec := serve(srv, http.MethodPost, "/api/export/dynamodb", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, newTestDashboard())
	analyze(t, srv, "good")

	rec := serve(srv, http.MethodGet, "/metrics", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sentiboard_analyses_total")
}

func TestAnalyzeRateLimit(t *testing.T) {
	srv := NewServer(&config.Config{Port: "0", AnalyzeRateLimit: 0.001, AnalyzeRateBurst: 2}, newTestDashboard())

	for i := 0; i < 2; i++ {
		rec := serve(srv, http.MethodPost, "/api/analyze", echo.MIMEApplicationJSON, `{"text":"good"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := serve(srv, http.MethodPost, "/api/analyze", echo.MIMEApplicationJSON, `{"text":"good"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = serve(srv, http.MethodGet, "/api/overview", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleSchema(t *testing.T) {
	srv := newTestServer(t, newTestDashboard())

	rec := serve(srv, http.MethodGet, "/api/schema/analysis-request", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var schema map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schema))
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "request_id")
	assert.Contains(t, props, "text")

	rec = serve(srv, http.MethodGet, "/api/schema/analysis-result", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sentences"`)

	rec = serve(srv, http.MethodGet, "/api/schema/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
