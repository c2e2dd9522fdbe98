package patient

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/patientor/internal/platform/fhir"
	"github.com/ehr/patientor/pkg/pagination"
)

type Handler struct {
	svc   *Service
	names DiagnosisNamer
}

// NewHandler builds the patient routes. names resolves diagnosis display text
// for FHIR output and may be nil.
func NewHandler(svc *Service, names DiagnosisNamer) *Handler {
	return &Handler{svc: svc, names: names}
}

func (h *Handler) RegisterRoutes(api *echo.Group, fhirGroup *echo.Group) {
	api.GET("/ping", h.Ping)
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:id", h.GetPatient)
	api.POST("/patients", h.CreatePatient)
	api.POST("/patients/:id/entries", h.AddEntry)

	fhirGroup.GET("/Patient", h.SearchPatientsFHIR)
	fhirGroup.GET("/Patient/:id", h.GetPatientFHIR)
}

func (h *Handler) Ping(c echo.Context) error {
	return c.String(http.StatusOK, "pong")
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.ListPublicPatients(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg))
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	raw, err := decodeObject(c)
	if err != nil {
		return err
	}
	p, err := h.svc.CreatePatient(c.Request().Context(), raw)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) AddEntry(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	raw, err := decodeObject(c)
	if err != nil {
		return err
	}
	e, err := h.svc.AddEntry(c.Request().Context(), id, raw)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) GetPatientFHIR(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, fhir.NotFoundOutcome("Patient", c.Param("id")))
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, p.ToFHIR(h.names))
}

func (h *Handler) SearchPatientsFHIR(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return internalError(err)
	}

	resources := make([]map[string]interface{}, len(patients))
	for i, p := range patients {
		resources[i] = p.ToFHIR(h.names)
	}
	pageLinks := pg.Links(c.Request().URL.Path, total)
	links := make([]fhir.BundleLink, len(pageLinks))
	for i, l := range pageLinks {
		links[i] = fhir.BundleLink{Relation: l.Relation, URL: l.URL}
	}
	return c.JSON(http.StatusOK, fhir.NewSearchBundle(resources, total, links))
}

func (h *Handler) errorResponse(c echo.Context, err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, fhir.FieldOutcome(issueType(ve.Kind), ve.Field, ve.Message))
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, fhir.NotFoundOutcome("Patient", c.Param("id")))
	}
	return internalError(err)
}

// internalError hides err from the client; the request logger reports it.
func internalError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError,
		fhir.InternalErrorOutcome("internal server error")).SetInternal(err)
}

// issueType maps a validation error kind to an OperationOutcome issue code.
func issueType(k ErrorKind) string {
	switch k {
	case KindMissing:
		return fhir.IssueTypeRequired
	case KindWrongType:
		return fhir.IssueTypeStructure
	case KindOutOfRange:
		return fhir.IssueTypeValue
	case KindUnknownCode:
		return fhir.IssueTypeCodeInvalid
	}
	return fhir.IssueTypeInvalid
}

// decodeObject reads the request body as a JSON object. An empty body decodes
// to an empty object so the parser reports the first missing field.
func decodeObject(c echo.Context) (map[string]any, error) {
	raw := map[string]any{}
	err := json.NewDecoder(c.Request().Body).Decode(&raw)
	if err == nil || errors.Is(err, io.EOF) {
		return raw, nil
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return nil, he
	}
	return nil, echo.NewHTTPError(http.StatusBadRequest,
		fhir.FieldOutcome(fhir.IssueTypeStructure, "", "request body must be a JSON object"))
}
