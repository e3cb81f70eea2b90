package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, api.SetupValidator())

	db := testhelpers.SetupTestDatabase(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	images := testhelpers.NewMemoryImageStore()
	auth := service.NewAuthService(db, "test-secret", time.Hour, client)
	return SetupRouter(cfg, Handlers{
		Auth:    api.NewAuthHandler(auth),
		Users:   api.NewUserHandler(auth, service.NewUserService(db, images), 6),
		Catalog: api.NewCatalogHandler(service.NewCatalogService(db)),
		Recipes: api.NewRecipeHandler(service.NewRecipeService(db, images, "http://testserver"), auth,
			middleware.NewRecipeCreationRateLimiter(client, 10), 6),
		Health: api.NewHealthHandler(db),
	})
}

func get(r http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetupRouter(t *testing.T) {
	media := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(media, "users", "avatars"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(media, "users", "avatars", "a.png"), []byte("png"), 0o644))

	r := newTestRouter(t, &config.Config{
		Env:            config.Test,
		AllowedOrigins: []string{"http://localhost:3000"},
		MediaBackend:   "local",
		MediaRoot:      media,
	})

	w := get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = get(r, "/api/tags", middleware.RequestIDHeader, "req-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get(middleware.RequestIDHeader))

	w = get(r, "/api/recipes")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, w.Body.String())

	w = get(r, "/api/users/me")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/media/users/avatars/a.png")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())

	w = get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "foodgram_http_requests_total")

	w = get(r, "/api/tags", "Origin", "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetupRouterWithoutLocalMedia(t *testing.T) {
	r := newTestRouter(t, &config.Config{Env: config.Test, MediaBackend: "s3"})

	w := get(r, "/media/users/avatars/a.png")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(r, "/api/tags", "Origin", "http://anywhere.example")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
