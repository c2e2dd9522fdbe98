package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// AccessEntry describes one request that touched patient records.
type AccessEntry struct {
	Action    string // read, search, create
	Route     string
	PatientID string
	Method    string
	RemoteIP  string
	RequestID string
	Status    int
	Timestamp time.Time
}

// AccessRecorder persists access entries somewhere other than the log.
type AccessRecorder interface {
	RecordAccess(entry AccessEntry) error
}

// AccessRecorderFunc is a function adapter for AccessRecorder.
type AccessRecorderFunc func(entry AccessEntry) error

func (f AccessRecorderFunc) RecordAccess(entry AccessEntry) error {
	return f(entry)
}

// patientRoutes are the route prefixes that expose patient data.
var patientRoutes = []string{"/api/patients", "/fhir/Patient"}

// PatientAccess logs every request routed to a patient endpoint with the
// patient id it addressed. Entries are also handed to recorder when one is
// given; a recorder error is logged and does not fail the request.
func PatientAccess(logger zerolog.Logger, recorder AccessRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if !isPatientRoute(route) {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil && !c.Response().Committed {
				status = http.StatusInternalServerError
			}
			entry := AccessEntry{
				Action:    accessAction(c.Request().Method, c.Param("id")),
				Route:     route,
				PatientID: c.Param("id"),
				Method:    c.Request().Method,
				RemoteIP:  c.RealIP(),
				RequestID: GetRequestID(c),
				Status:    status,
				Timestamp: time.Now().UTC(),
			}

			if recorder != nil {
				if recErr := recorder.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record patient access")
				}
			}

			logger.Info().
				Str("type", "patient_access").
				Str("request_id", entry.RequestID).
				Str("action", entry.Action).
				Str("patient_id", entry.PatientID).
				Str("route", entry.Route).
				Str("remote_ip", entry.RemoteIP).
				Int("status", entry.Status).
				Msg("patient_access")

			return err
		}
	}
}

func isPatientRoute(route string) bool {
	for _, prefix := range patientRoutes {
		if strings.HasPrefix(route, prefix) {
			return true
		}
	}
	return false
}

// accessAction maps a method to an audit action. Reads without an id are
// searches.
func accessAction(method, id string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "create"
	}
	if id == "" {
		return "search"
	}
	return "read"
}
