package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gewnthar/presupuesto/backend/cache"
	"github.com/gewnthar/presupuesto/backend/models"
	"github.com/gewnthar/presupuesto/backend/scraper"
	"github.com/gewnthar/presupuesto/backend/services"
)

const educationPage = `<html><body>
<table>
  <thead><tr><th>Número</th><th>Institución</th><th>Aprobado</th><th>Vigente</th><th>Devengado</th></tr></thead>
  <tbody><tr><td>01</td><td>Ministerio de Educación</td><td>1.000.000</td><td>1.200.000</td><td>900.000</td></tr></tbody>
</table>
</body></html>`

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	Error     string          `json:"error"`
	Timestamp time.Time       `json:"timestamp"`
}

// newBCNService points a real fetcher at a fake BCN site that only publishes 2024.
func newBCNService(t *testing.T) *services.BcnService {
	t.Helper()
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/", "":
			w.Write([]byte("<html>BCN</html>"))
		case "/periodo/2024":
			w.Write([]byte(educationPage))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(site.Close)

	memory, err := cache.NewMemoryCache(100)
	require.NoError(t, err)

	return services.NewBcnService(memory, scraper.NewHTTPFetcher(2*time.Second, ""), services.BcnOptions{
		BaseURL: site.URL,
		Now:     func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
}

func serve(t *testing.T, method, pattern, target string, body []byte, h http.HandlerFunc) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestGetBudget(t *testing.T) {
	svc := newBCNService(t)

	rec, env := serve(t, http.MethodGet, "/bcn/{year}", "/bcn/2024", nil, GetBudget(svc))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.False(t, env.Timestamp.IsZero())
	var snapshot models.BudgetSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.True(t, snapshot.IsRealData)
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, 1200000000.0, snapshot.Totals.Current)
}

func TestGetBudget_Fallback(t *testing.T) {
	svc := newBCNService(t)

	rec, env := serve(t, http.MethodGet, "/bcn/{year}", "/bcn/2023", nil, GetBudget(svc))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Message)
	var snapshot models.BudgetSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.True(t, snapshot.IsFallback)
	assert.Empty(t, snapshot.Lines)
}

func TestGetBudget_InvalidYear(t *testing.T) {
	svc := newBCNService(t)

	rec, env := serve(t, http.MethodGet, "/bcn/{year}", "/bcn/abc", nil, GetBudget(svc))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "invalid year")
}

func TestGetStandardBudget(t *testing.T) {
	svc := newBCNService(t)

	rec, env := serve(t, http.MethodGet, "/bcn/{year}/standard", "/bcn/2024/standard", nil, GetStandardBudget(svc))

	assert.Equal(t, http.StatusOK, rec.Code)
	var standard models.StandardBudget
	require.NoError(t, json.Unmarshal(env.Data, &standard))
	assert.Equal(t, "CLP", standard.Currency)
	require.Len(t, standard.Ministries, 1)
	assert.Equal(t, "MINEDUC", standard.Ministries[0].Code)
	assert.Equal(t, 75.0, standard.Ministries[0].ExecutionPercentage)

	rec, env = serve(t, http.MethodGet, "/bcn/{year}/standard", "/bcn/2023/standard", nil, GetStandardBudget(svc))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", string(env.Data))
	assert.Contains(t, env.Message, "2023")
}

func TestGetMinistry(t *testing.T) {
	svc := newBCNService(t)
	pattern := "/bcn/{year}/ministries/{code}"

	rec, env := serve(t, http.MethodGet, pattern, "/bcn/2024/ministries/mineduc", nil, GetMinistry(svc))
	assert.Equal(t, http.StatusOK, rec.Code)
	var rollup models.MinistryRollup
	require.NoError(t, json.Unmarshal(env.Data, &rollup))
	assert.Equal(t, "MINEDUC", rollup.Code)
	assert.Equal(t, 1200000000.0, rollup.Budget)

	rec, env = serve(t, http.MethodGet, pattern, "/bcn/2024/ministries/MINSAL", nil, GetMinistry(svc))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)

	rec, _ = serve(t, http.MethodGet, pattern, "/bcn/2023/ministries/MINEDUC", nil, GetMinistry(svc))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListMinistries(t *testing.T) {
	svc := newBCNService(t)

	rec, env := serve(t, http.MethodGet, "/bcn/{year}/ministries", "/bcn/2024/ministries", nil, ListMinistries(svc))

	assert.Equal(t, http.StatusOK, rec.Code)
	var rollups []models.MinistryRollup
	require.NoError(t, json.Unmarshal(env.Data, &rollups))
	assert.Len(t, rollups, 1)
}

func TestGetYearsAndAvailability(t *testing.T) {
	svc := newBCNService(t)

	_, env := serve(t, http.MethodGet, "/bcn/years", "/bcn/years", nil, GetYears(svc))
	var years []int
	require.NoError(t, json.Unmarshal(env.Data, &years))
	assert.Equal(t, 2010, years[0])
	assert.Equal(t, 2025, years[len(years)-1])

	_, env = serve(t, http.MethodGet, "/bcn/availability", "/bcn/availability", nil, GetAvailability(svc))
	var availability models.Availability
	require.NoError(t, json.Unmarshal(env.Data, &availability))
	assert.True(t, availability.Available)
	assert.Equal(t, 200, availability.Status)
}

func TestExportLinesCSV(t *testing.T) {
	svc := newBCNService(t)

	rec, _ := serve(t, http.MethodGet, "/bcn/{year}/lines.csv", "/bcn/2024/lines.csv", nil, ExportLinesCSV(svc))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "presupuesto_2024.csv")
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "numero,nombre,aprobado"))
	assert.Contains(t, body, "01,Ministerio de Educación,1000000000,0,1200000000,900000000,0")
}

func TestExportMinistriesXLSX(t *testing.T) {
	svc := newBCNService(t)

	rec, _ := serve(t, http.MethodGet, "/bcn/{year}/ministries.xlsx", "/bcn/2024/ministries.xlsx", nil, ExportMinistriesXLSX(svc))

	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(ministriesSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Código", header)
	code, err := f.GetCellValue(ministriesSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "MINEDUC", code)
	name, _ := f.GetCellValue(ministriesSheet, "B2")
	assert.Equal(t, "Ministerio de Educación", name)
}

func TestExportMinistriesXLSX_Fallback(t *testing.T) {
	svc := newBCNService(t)

	rec, env := serve(t, http.MethodGet, "/bcn/{year}/ministries.xlsx", "/bcn/2023/ministries.xlsx", nil, ExportMinistriesXLSX(svc))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestRefreshYear(t *testing.T) {
	svc := newBCNService(t)
	pattern := "/admin/bcn/{year}/refresh"

	rec, env := serve(t, http.MethodPost, pattern, "/admin/bcn/2024/refresh", nil, RefreshYear(svc))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, _ = serve(t, http.MethodPost, pattern, "/admin/bcn/2023/refresh", nil, RefreshYear(svc))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec, _ = serve(t, http.MethodPost, pattern, "/admin/bcn/1990/refresh", nil, RefreshYear(svc))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportLines(t *testing.T) {
	svc := newBCNService(t)
	pattern := "/admin/bcn/{year}/import"
	body := []byte("numero,nombre,aprobado,modificaciones,vigente,devengado,porcentaje_ejecucion\n" +
		"16,Ministerio de Salud,1000,0,1200,600,50\n" +
		"99,,5,0,5,0,0\n")

	rec, env := serve(t, http.MethodPost, pattern, "/admin/bcn/2023/import", body, ImportLines(svc))

	require.Equal(t, http.StatusCreated, rec.Code)
	var snapshot models.BudgetSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Equal(t, services.SourceManual, snapshot.Source)
	assert.Equal(t, 1, snapshot.LinesCount)

	got, err := svc.GetBudgetData(context.Background(), 2023)
	require.NoError(t, err)
	assert.Equal(t, services.SourceManual, got.Source)
}

func TestImportLines_BadInput(t *testing.T) {
	svc := newBCNService(t)
	pattern := "/admin/bcn/{year}/import"

	rec, _ := serve(t, http.MethodPost, pattern, "/admin/bcn/2023/import", []byte("numero,nombre,aprobado\n01,x,abc\n"), ImportLines(svc))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, http.MethodPost, pattern, "/admin/bcn/2023/import", []byte("numero,nombre,aprobado\n01,,0\n"), ImportLines(svc))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, http.MethodPost, pattern, "/admin/bcn/1990/import", []byte("numero,nombre,aprobado\n01,x,1\n"), ImportLines(svc))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFlushCache(t *testing.T) {
	svc := newBCNService(t)

	rec, env := serve(t, http.MethodPost, "/admin/cache/flush", "/admin/cache/flush", nil, FlushCache(svc))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cache flushed", env.Message)
}

type fakeVersions struct {
	versions []models.SourceVersion
	err      error
}

func (f fakeVersions) ListSourceVersions(context.Context) ([]models.SourceVersion, error) {
	return f.versions, f.err
}

func TestListSourceVersions(t *testing.T) {
	path := "/admin/bcn/source-versions"

	rec, _ := serve(t, http.MethodGet, path, path, nil, ListSourceVersions(nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, env := serve(t, http.MethodGet, path, path, nil, ListSourceVersions(fakeVersions{
		versions: []models.SourceVersion{{Year: 2024, LastOutcome: models.FetchOutcomeSuccess}},
	}))
	assert.Equal(t, http.StatusOK, rec.Code)
	var versions []models.SourceVersion
	require.NoError(t, json.Unmarshal(env.Data, &versions))
	assert.Equal(t, 2024, versions[0].Year)

	rec, _ = serve(t, http.MethodGet, path, path, nil, ListSourceVersions(fakeVersions{err: errors.New("db down")}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping() error { return p.err }

func TestHealth(t *testing.T) {
	rec, env := serve(t, http.MethodGet, "/health", "/health", nil, Health(nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"disabled"}`, string(env.Data))

	rec, env = serve(t, http.MethodGet, "/health", "/health", nil, Health(fakePinger{}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, string(env.Data))

	rec, env = serve(t, http.MethodGet, "/health", "/health", nil, Health(fakePinger{err: errors.New("down")}))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "database unreachable", env.Error)
}
