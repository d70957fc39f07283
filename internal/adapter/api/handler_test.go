package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindgate-core/internal/adapter/store"
	"mindgate-core/internal/config"
	"mindgate-core/internal/domain/entity"
	"mindgate-core/internal/usecase"
)

func newTestApp(t *testing.T) (*fiber.App, *store.TieredCache) {
	t.Helper()
	mem := store.NewMemoryCache(0)
	t.Cleanup(mem.Close)
	cache := store.NewTieredCache(zap.NewNop(), mem)

	cfg := &config.Config{
		DuplicateWindow: time.Minute,
		RouteTimeout:    time.Second,
		Gating: config.Gating{
			ThresholdSimple:  0.65,
			ThresholdLow:     0.60,
			ThresholdComplex: 0.80,
			TextLengthLimit:  280,
			SimilarWindow:    time.Hour,
		},
		Cache: config.Cache{
			TTLMood:       time.Hour,
			TTLBreathwork: time.Hour,
			TTLTherapy:    time.Hour,
			TTLOther:      time.Hour,
		},
	}
	pipeline := usecase.NewPipeline(cfg, usecase.PipelineDeps{Cache: cache})

	app := fiber.New()
	SetupRouter(app, NewAnalysisHandler(pipeline, cache.Stats))
	return app, cache
}

func postAnalyze(t *testing.T, app *fiber.App, body map[string]any) (*analyzeResponse, string, int) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/v1/analyze", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		return nil, "", resp.StatusCode
	}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out analyzeResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return &out, resp.Header.Get("X-Mindgate-Cache"), resp.StatusCode
}

func TestAnalyzeEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	body := map[string]any{
		"kind":    "TEXT",
		"content": "Nefes almam gerek, çok sakin olmalıyım",
		"user_id": "u1",
	}

	out, cacheHeader, status := postAnalyze(t, app, body)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, entity.CategoryBreathwork, out.Result.Category)
	assert.Equal(t, entity.RouteSuggestBreathwork, out.Directive.Action)
	assert.Equal(t, "miss", cacheHeader)

	// Identical request replays from cache.
	out, cacheHeader, status = postAnalyze(t, app, body)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, entity.SourceCache, out.Result.Source)
	assert.Equal(t, "hit", cacheHeader)
}

func TestAnalyzeDefaultsKindToText(t *testing.T) {
	app, _ := newTestApp(t)

	out, _, status := postAnalyze(t, app, map[string]any{
		"content": "bugün moralim bozuk",
		"user_id": "u1",
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, entity.CategoryMood, out.Result.Category)
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	app, _ := newTestApp(t)

	_, _, status := postAnalyze(t, app, map[string]any{"content": "", "user_id": "u1"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	_, _, status = postAnalyze(t, app, map[string]any{"content": "x", "user_id": "u1", "kind": "TELEPATHY"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHealthReportsCacheStats(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body struct {
		Status string            `json:"status"`
		Cache  []store.TierStats `json:"cache"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "healthy", body.Status)
	require.Len(t, body.Cache, 1)
	assert.Equal(t, "memory", body.Cache[0].Name)
}
