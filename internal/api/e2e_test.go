package api_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UnknownOlympus/iris/internal/api"
	"github.com/UnknownOlympus/iris/internal/metrics"
	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/UnknownOlympus/iris/internal/services/employees"
	"github.com/UnknownOlympus/iris/internal/upstream"
	"github.com/UnknownOlympus/iris/internal/upstream/fake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStack(t *testing.T, staff ...models.Employee) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())

	upstreamServer := httptest.NewServer(fake.NewDirectory(logger, staff...).Handler())
	t.Cleanup(upstreamServer.Close)

	client := upstream.NewClient(logger, upstream.CreateHTTPClient(logger, 0), appMetrics,
		upstreamServer.URL+fake.BasePath)
	directory := employees.NewDirectory(logger, client, appMetrics)

	return api.NewRouter(logger, directory, appMetrics, api.Options{})
}

func TestEndToEnd(t *testing.T) {
	t.Parallel()

	router := newStack(t, mary, peter)

	rr := serve(router, http.MethodGet, "/api/v1/employees/highest-salary", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "458866", rr.Body.String())

	rr = serve(router, http.MethodGet, "/api/v1/employees/top-ten-highest-earning", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `["Peter Parker","Mary Jane"]`, rr.Body.String())

	rr = serve(router, http.MethodGet, "/api/v1/employees/search?name=mary", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var found []models.Employee
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &found))
	assert.Equal(t, []models.Employee{mary}, found)

	rr = serve(router, http.MethodPost, "/api/v1/employees",
		`{"name":"Gwen Stacy","salary":120000,"age":19,"title":"intern"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var created models.Employee
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.Email)

	rr = serve(router, http.MethodGet, "/api/v1/employees/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var fetched models.Employee
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)

	rr = serve(router, http.MethodDelete, "/api/v1/employees/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Employee Gwen Stacy deleted successfully.", rr.Body.String())

	rr = serve(router, http.MethodDelete, "/api/v1/employees/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rr).Code)

	rr = serve(router, http.MethodGet, "/api/v1/employees/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEndToEndEmptyDirectory(t *testing.T) {
	t.Parallel()

	router := newStack(t)

	rr := serve(router, http.MethodGet, "/api/v1/employees", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())

	for _, target := range []string{
		"/api/v1/employees/highest-salary",
		"/api/v1/employees/top-ten-highest-earning",
		"/api/v1/employees/search?name=a",
	} {
		rr = serve(router, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, rr.Code, target)
	}
}
