package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	flags_module "github.com/ethanbaker/flagdash/internal/api/modules/flags"
	flag_store "github.com/ethanbaker/flagdash/internal/stores/flags"
	"github.com/ethanbaker/flagdash/pkg/sdk"
	"github.com/ethanbaker/flagdash/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	log.SetHandler(discard.Default)
	os.Exit(m.Run())
}

func newTestEngine(values map[string]string) *gin.Engine {
	service := flags_module.NewFlagService(flag_store.NewInMemoryStore())
	return NewEngine(utils.NewConfig(values), service)
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	engine := newTestEngine(nil)

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "uptime")
}

func TestFlagRoutesMounted(t *testing.T) {
	engine := newTestEngine(nil)

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/flags", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp sdk.ListFlagsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.Meta.Total)
}

func TestNoRoute(t *testing.T) {
	engine := newTestEngine(nil)

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/api/flags", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp sdk.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, sdk.CodeNotFound, resp.Error.Code)
	assert.Equal(t, "Route not found", resp.Error.Message)
}

func TestRequestID(t *testing.T) {
	engine := newTestEngine(nil)

	t.Run("generated when missing", func(t *testing.T) {
		rec := serve(engine, httptest.NewRequest(http.MethodGet, "/health", nil))
		_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("valid header is reused", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, id)

		rec := serve(engine, req)
		assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
	})

	t.Run("invalid header is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "<script>")

		rec := serve(engine, req)
		got := rec.Header().Get(RequestIDHeader)
		assert.NotEqual(t, "<script>", got)
		_, err := uuid.Parse(got)
		assert.NoError(t, err)
	})
}

func TestCORS(t *testing.T) {
	t.Run("wildcard by default", func(t *testing.T) {
		engine := newTestEngine(nil)

		req := httptest.NewRequest(http.MethodOptions, "/flags", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)

		rec := serve(engine, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	})

	t.Run("configured origins", func(t *testing.T) {
		engine := newTestEngine(map[string]string{"CORS_ALLOWED_ORIGINS": "http://dashboard.local, http://admin.local"})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://admin.local")
		rec := serve(engine, req)
		assert.Equal(t, "http://admin.local", rec.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://evil.local")
		rec = serve(engine, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
