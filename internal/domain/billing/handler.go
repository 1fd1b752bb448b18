package billing

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebase/carebase/internal/platform/audit"
	"github.com/carebase/carebase/internal/platform/auth"
	"github.com/carebase/carebase/pkg/pagination"
)

type Handler struct {
	gen   *Generator
	svc   *Service
	audit *audit.Logger
}

func NewHandler(gen *Generator, svc *Service, auditLog *audit.Logger) *Handler {
	return &Handler{gen: gen, svc: svc, audit: auditLog}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "case_manager", "clinician", "billing_specialist"))
	readGroup.GET("/billing/codes", h.ListCodes)
	readGroup.GET("/encounters/:id/service-lines", h.GetServiceLines)
	readGroup.GET("/service-lines", h.ListByStatus)
	readGroup.GET("/service-lines/:id", h.GetServiceLine)

	writeGroup := api.Group("", auth.RequireRole("admin", "case_manager", "clinician"))
	writeGroup.PUT("/encounters/:id/service-lines", h.SaveServiceLines)

	claimGroup := api.Group("", auth.RequireRole("admin", "billing_specialist"))
	claimGroup.POST("/service-lines/:id/billed", h.MarkBilled)
	claimGroup.POST("/service-lines/:id/rejected", h.MarkRejected)
}

func (h *Handler) ListCodes(c echo.Context) error {
	noteType := c.QueryParam("note_type")
	if noteType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "note_type is required")
	}
	return c.JSON(http.StatusOK, h.gen.CodesForNoteType(noteType))
}

type saveRequest struct {
	Codes []string `json:"codes"`
}

func (h *Handler) SaveServiceLines(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req saveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.gen.Save(c.Request().Context(), id, req.Codes)
	if err != nil {
		if errors.Is(err, ErrImmutableBillingLine) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) GetServiceLines(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	lines, err := h.gen.Lines(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.logAccess(c, id.String(), "Encounter", "service_line_read")
	return c.JSON(http.StatusOK, lines)
}

func (h *Handler) GetServiceLine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	l, err := h.svc.GetLine(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "service line not found")
	}
	h.logAccess(c, id.String(), "BillingServiceLine", "service_line_read")
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) ListByStatus(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = StatusPending
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByStatus(c.Request().Context(), status, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) MarkBilled(c echo.Context) error {
	return h.claim(c, h.svc.MarkBilled)
}

func (h *Handler) MarkRejected(c echo.Context) error {
	return h.claim(c, h.svc.MarkRejected)
}

func (h *Handler) claim(c echo.Context, fn func(ctx context.Context, id uuid.UUID) (*ServiceLine, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	l, err := fn(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) logAccess(c echo.Context, recordID, recordType, source string) {
	if h.audit == nil {
		return
	}
	userID, _ := c.Get("auth_user_id").(string)
	h.audit.LogAccess(recordID, recordType, source, userID)
}
