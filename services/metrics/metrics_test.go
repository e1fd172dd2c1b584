package metricsvc

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T, m *Metrics) string {
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape code = %d; want 200", rec.Code)
	}
	return rec.Body.String()
}

func TestMetrics_Middleware(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/v1/users/:id", func(ctx echo.Context) error { return ctx.NoContent(http.StatusNoContent) })
	e.GET("/boom", func(ctx echo.Context) error { return echo.NewHTTPError(http.StatusForbidden, "nope") })

	for _, path := range []string{"/v1/users/1", "/v1/users/2", "/boom"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := scrape(t, m)
	assert.Contains(t, out, `staffgap_http_requests_total{code="204",method="GET",route="/v1/users/:id"} 2`)
	assert.Contains(t, out, `staffgap_http_requests_total{code="403",method="GET",route="/boom"} 1`)
	assert.True(t, strings.Contains(out, "staffgap_http_request_duration_seconds_bucket"))
}

func TestMetrics_DomainCounters(t *testing.T) {
	m := New()
	m.Login(true)
	m.Login(false)
	m.Login(false)
	m.SubmissionStatus("Approved")

	out := scrape(t, m)
	assert.Contains(t, out, `staffgap_logins_total{outcome="failure"} 2`)
	assert.Contains(t, out, `staffgap_logins_total{outcome="success"} 1`)
	assert.Contains(t, out, `staffgap_submission_status_changes_total{status="Approved"} 1`)
}
