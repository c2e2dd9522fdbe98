package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newRateLimitedServer(rps float64, burst int) *echo.Echo {
	e := echo.New()
	e.Use(WriteRateLimit(rps, burst))
	e.GET("/api/patients", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/api/patients", func(c echo.Context) error { return c.String(http.StatusCreated, "ok") })
	return e
}

func TestWriteRateLimit_ThrottlesWrites(t *testing.T) {
	e := newRateLimitedServer(0.001, 1)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/patients", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first write: expected 201, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/patients", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second write: expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if !strings.Contains(rec.Body.String(), `"throttled"`) {
		t.Errorf("expected throttled outcome, got %s", rec.Body.String())
	}
}

func TestWriteRateLimit_ReadsNotLimited(t *testing.T) {
	e := newRateLimitedServer(0.001, 1)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/patients", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("read %d: expected 200, got %d", i, rec.Code)
		}
	}
}

func TestWriteRateLimit_PerClient(t *testing.T) {
	e := newRateLimitedServer(0.001, 1)

	for _, ip := range []string{"10.0.0.1:1000", "10.0.0.2:1000"} {
		req := httptest.NewRequest(http.MethodPost, "/api/patients", nil)
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Errorf("client %s: expected 201, got %d", ip, rec.Code)
		}
	}
}

func TestWriteRateLimit_ZeroDisables(t *testing.T) {
	e := newRateLimitedServer(0, 0)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/patients", nil))
		if rec.Code != http.StatusCreated {
			t.Fatalf("write %d: expected 201, got %d", i, rec.Code)
		}
	}
}
