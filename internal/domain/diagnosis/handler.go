package diagnosis

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/patientor/internal/platform/fhir"
)

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/diagnoses", h.ListDiagnoses)
	api.GET("/diagnoses/:code", h.GetDiagnosis)
}

func (h *Handler) ListDiagnoses(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.All())
}

func (h *Handler) GetDiagnosis(c echo.Context) error {
	code := c.Param("code")
	d, ok := h.catalog.Lookup(code)
	if !ok {
		return c.JSON(http.StatusNotFound, fhir.NotFoundOutcome("Diagnosis", code))
	}
	return c.JSON(http.StatusOK, d)
}
