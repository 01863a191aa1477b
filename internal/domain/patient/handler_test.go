package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/glucotrack/glucotrack/internal/platform/auth"
)

func doGet(t *testing.T, h echo.HandlerFunc, target string, userID uuid.UUID, role string, pathParam ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	ctx := req.Context()
	if userID != uuid.Nil {
		ctx = context.WithValue(ctx, auth.UserIDKey, userID.String())
	}
	if role != "" {
		ctx = context.WithValue(ctx, auth.UserRoleKey, role)
	}
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(pathParam) == 2 {
		c.SetParamNames(pathParam[0])
		c.SetParamValues(pathParam[1])
	}

	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandler_ListRecords(t *testing.T) {
	repo := newMemRepo()
	h := NewHandler(NewService(repo))
	owner := uuid.New()
	seedRecord(t, repo, owner, "High")
	seedRecord(t, repo, uuid.New(), "Low")

	rec := doGet(t, h.ListRecords, "/records", owner, "user")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data  []*Record `json:"data"`
		Total int       `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Errorf("expected only own record, got total=%d len=%d", resp.Total, len(resp.Data))
	}
}

func TestHandler_ListRecords_Unauthenticated(t *testing.T) {
	h := NewHandler(NewService(newMemRepo()))

	rec := doGet(t, h.ListRecords, "/records", uuid.Nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestHandler_GetRecord(t *testing.T) {
	repo := newMemRepo()
	h := NewHandler(NewService(repo))
	owner := uuid.New()
	stored := seedRecord(t, repo, owner, "High")

	rec := doGet(t, h.GetRecord, "/records/"+stored.ID.String(), owner, "user", "id", stored.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got Record
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != stored.ID || got.RiskLevel != "High" {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestHandler_GetRecord_Forbidden(t *testing.T) {
	repo := newMemRepo()
	h := NewHandler(NewService(repo))
	stored := seedRecord(t, repo, uuid.New(), "Low")

	rec := doGet(t, h.GetRecord, "/records/"+stored.ID.String(), uuid.New(), "user", "id", stored.ID.String())
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestHandler_GetRecord_AdminAllowed(t *testing.T) {
	repo := newMemRepo()
	h := NewHandler(NewService(repo))
	stored := seedRecord(t, repo, uuid.New(), "Low")

	rec := doGet(t, h.GetRecord, "/records/"+stored.ID.String(), uuid.New(), "admin", "id", stored.ID.String())
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestHandler_GetRecord_BadID(t *testing.T) {
	h := NewHandler(NewService(newMemRepo()))

	rec := doGet(t, h.GetRecord, "/records/nope", uuid.New(), "user", "id", "nope")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRecord_JSONContract(t *testing.T) {
	rec := &Record{Precentage: 82.5, RiskLevel: "High"}
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]interface{}
	json.Unmarshal(raw, &m)

	if _, ok := m["precentage"]; !ok {
		t.Error(`expected "precentage" key in record JSON`)
	}
	if _, ok := m["riskLevel"]; !ok {
		t.Error(`expected "riskLevel" key in record JSON`)
	}
}
