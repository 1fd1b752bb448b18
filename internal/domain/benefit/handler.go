package benefit

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
	svc      *Service
	resolver *Resolver
	engine   *Engine
	programs ProgramDirectory
	audit    *audit.Logger
}

func NewHandler(svc *Service, resolver *Resolver, engine *Engine, programs ProgramDirectory, auditLog *audit.Logger) *Handler {
	return &Handler{svc: svc, resolver: resolver, engine: engine, programs: programs, audit: auditLog}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "case_manager", "clinician", "billing_specialist"))
	readGroup.GET("/benefits/:id", h.GetBenefit)
	readGroup.GET("/programs/:id/benefits", h.ListBenefitsByProgram)
	readGroup.GET("/participants/:id/assignments", h.ListAssignmentsByParticipant)
	readGroup.GET("/disbursements/:id", h.GetDisbursement)
	readGroup.GET("/participants/:id/disbursements", h.ListDisbursementsByParticipant)
	readGroup.GET("/benefits/:id/disbursements", h.ListDisbursementsByBenefit)

	writeGroup := api.Group("", auth.RequireRole("admin", "case_manager"))
	writeGroup.POST("/benefits", h.CreateBenefit)
	writeGroup.PUT("/benefits/:id", h.UpdateBenefit)
	writeGroup.POST("/assignments/check", h.CheckAssignments)
	writeGroup.POST("/assignments", h.CreateMissingAssignments)
	writeGroup.POST("/disbursements", h.Disburse)
	writeGroup.POST("/disbursements/confirm", h.ConfirmAndRetry)
}

func (h *Handler) CreateBenefit(c echo.Context) error {
	var b Benefit
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateBenefit(c.Request().Context(), &b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetBenefit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBenefit(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "benefit not found")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) UpdateBenefit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var b Benefit
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b.ID = id
	if err := h.svc.UpdateBenefit(c.Request().Context(), &b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListBenefitsByProgram(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBenefitsByProgram(c.Request().Context(), pid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type assignmentRequest struct {
	Program        string      `json:"program"`
	BenefitID      uuid.UUID   `json:"benefit_id"`
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
}

func (h *Handler) resolveProgramRef(c echo.Context, ref string) (uuid.UUID, error) {
	if ref == "" {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "program is required")
	}
	id, err := h.programs.ResolveProgramID(c.Request().Context(), ref)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return id, nil
}

func (h *Handler) CheckAssignments(c echo.Context) error {
	var req assignmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	programID, err := h.resolveProgramRef(c, req.Program)
	if err != nil {
		return err
	}
	result, err := h.resolver.Check(c.Request().Context(), programID, req.BenefitID, req.ParticipantIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) CreateMissingAssignments(c echo.Context) error {
	var req assignmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	programID, err := h.resolveProgramRef(c, req.Program)
	if err != nil {
		return err
	}
	result, err := h.resolver.CreateMissing(c.Request().Context(), programID, req.BenefitID, req.ParticipantIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Disburse(c echo.Context) error {
	return h.runBatch(c, h.engine.Disburse)
}

func (h *Handler) ConfirmAndRetry(c echo.Context) error {
	return h.runBatch(c, h.engine.ConfirmAndRetryWithAssignments)
}

func (h *Handler) runBatch(c echo.Context, fn func(ctx context.Context, req *DisburseRequest) (*DisburseOutcome, error)) error {
	var req DisburseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	outcome, err := fn(c.Request().Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrProgramResolution):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, ErrNoEligibleParticipants):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	h.logAccess(c, req.BenefitID.String(), "BenefitDisbursement", "disbursement_engine")
	return c.JSON(http.StatusOK, outcome)
}

func (h *Handler) GetDisbursement(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.GetDisbursement(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "disbursement not found")
	}
	h.logAccess(c, id.String(), "BenefitDisbursement", "disbursement_read")
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListAssignmentsByParticipant(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAssignmentsByParticipant(c.Request().Context(), pid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListDisbursementsByParticipant(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDisbursementsByParticipant(c.Request().Context(), pid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListDisbursementsByBenefit(c echo.Context) error {
	bid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDisbursementsByBenefit(c.Request().Context(), bid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) logAccess(c echo.Context, recordID, recordType, source string) {
	if h.audit == nil {
		return
	}
	userID, _ := c.Get("auth_user_id").(string)
	h.audit.LogAccess(recordID, recordType, source, userID)
}
