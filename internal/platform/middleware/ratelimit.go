package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/ehr/patientor/internal/platform/fhir"
)

// rateLimitExpiry is how long an idle client's bucket is kept.
const rateLimitExpiry = 3 * time.Minute

// WriteRateLimit throttles POST, PUT, PATCH and DELETE requests per client IP
// to rps with bursts of burst. Reads are not limited. rps <= 0 disables it.
func WriteRateLimit(rps float64, burst int) echo.MiddlewareFunc {
	if rps <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if burst < 1 {
		burst = 1
	}

	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     burst,
		ExpiresIn: rateLimitExpiry,
	})
	limit := strconv.FormatFloat(rps, 'f', -1, 64)

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return true
			}
			return false
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden,
				fhir.NewOperationOutcome(fhir.IssueSeverityError, fhir.IssueTypeForbidden, "client could not be identified"))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			h := c.Response().Header()
			h.Set("Retry-After", "1")
			h.Set("X-RateLimit-Limit", limit)
			return echo.NewHTTPError(http.StatusTooManyRequests,
				fhir.NewOperationOutcome(fhir.IssueSeverityError, fhir.IssueTypeThrottled, "rate limit exceeded"))
		},
	})
}
