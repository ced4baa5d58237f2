package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/presupuesto/backend/cache"
	"github.com/gewnthar/presupuesto/backend/scraper"
	"github.com/gewnthar/presupuesto/backend/services"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	site := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(site.Close)

	memory, err := cache.NewMemoryCache(100)
	require.NoError(t, err)
	svc := services.NewBcnService(memory, scraper.NewHTTPFetcher(time.Second, ""), services.BcnOptions{
		BaseURL: site.URL,
		Now:     func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
	return NewRouter(Deps{Service: svc})
}

func TestNewRouter_Routes(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/bcn/years", http.StatusOK},
		{http.MethodGet, "/api/bcn/availability", http.StatusOK},
		{http.MethodGet, "/api/bcn/2024", http.StatusOK},
		{http.MethodGet, "/api/bcn/2024/standard", http.StatusOK},
		{http.MethodGet, "/api/bcn/2024/ministries", http.StatusNotFound},
		{http.MethodGet, "/api/bcn/2024/ministries/MINEDUC", http.StatusNotFound},
		{http.MethodGet, "/api/bcn/2024/lines.csv", http.StatusOK},
		{http.MethodGet, "/api/bcn/2024/ministries.xlsx", http.StatusNotFound},
		{http.MethodPost, "/api/admin/bcn/2024/refresh", http.StatusBadGateway},
		{http.MethodPost, "/api/admin/cache/flush", http.StatusOK},
		{http.MethodGet, "/api/admin/bcn/source-versions", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
		{http.MethodDelete, "/api/bcn/2024", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestNewRouter_Import(t *testing.T) {
	router := newTestRouter(t)
	body := "numero,nombre,aprobado,vigente\n01,Ministerio de Educación,10,12\n"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/bcn/2022/import", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bcn/2022/ministries/MINEDUC", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"MINEDUC"`)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/bcn/years", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
