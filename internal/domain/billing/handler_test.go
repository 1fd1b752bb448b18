package billing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestHandler(encID uuid.UUID, info *EncounterInfo) (*Handler, *mockLineRepo) {
	repo := newMockLineRepo()
	source := &mockSource{infos: map[uuid.UUID]*EncounterInfo{encID: info}}
	gen := NewGenerator(repo, source, zerolog.Nop())
	svc := NewService(repo, zerolog.Nop())
	return NewHandler(gen, svc, nil), repo
}

func TestListCodes_RequiresNoteType(t *testing.T) {
	encID := uuid.New()
	h, _ := newTestHandler(encID, peerOutreachInfo())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/billing/codes", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.ListCodes(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestSaveServiceLines_ReturnsResult(t *testing.T) {
	encID := uuid.New()
	h, repo := newTestHandler(encID, peerOutreachInfo())

	e := echo.New()
	body := `{"codes": ["T1017", "H0043"]}`
	req := httptest.NewRequest(http.MethodPut, "/encounters/"+encID.String()+"/service-lines", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(encID.String())

	if err := h.SaveServiceLines(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var result SaveResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Created() != 2 {
		t.Errorf("created = %d, want 2", result.Created())
	}
	if len(repo.lines) != 2 {
		t.Errorf("stored = %d, want 2", len(repo.lines))
	}
}

func TestSaveServiceLines_BilledConflict(t *testing.T) {
	encID := uuid.New()
	h, repo := newTestHandler(encID, peerOutreachInfo())
	billed := &ServiceLine{ID: uuid.New(), EncounterID: encID, Code: "H0043", Status: StatusBilled}
	repo.lines[billed.ID] = billed

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/encounters/"+encID.String()+"/service-lines", strings.NewReader(`{"codes": ["T1017"]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(encID.String())

	err := h.SaveServiceLines(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestMarkBilled_InvalidID(t *testing.T) {
	encID := uuid.New()
	h, _ := newTestHandler(encID, peerOutreachInfo())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/service-lines/not-a-uuid/billed", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.MarkBilled(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
