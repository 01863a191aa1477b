package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/glucotrack/glucotrack/internal/platform/auth"
)

func newHandlerFixture(t *testing.T) (*Handler, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	return NewHandler(newTestService(repo)), repo
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != uuid.Nil {
		ctx := context.WithValue(req.Context(), auth.UserIDKey, userID.String())
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandler_Register(t *testing.T) {
	h, _ := newHandlerFixture(t)

	rec := doJSON(t, h.Register, http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"secret-password"}`, uuid.Nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var got Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Email != "ada@example.com" || got.Role != RoleUser {
		t.Errorf("unexpected profile: %+v", got)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not leak password fields")
	}
}

func TestHandler_Register_Duplicate(t *testing.T) {
	h, _ := newHandlerFixture(t)

	body := `{"name":"Ada","email":"ada@example.com","password":"secret-password"}`
	doJSON(t, h.Register, http.MethodPost, "/auth/register", body, uuid.Nil)
	rec := doJSON(t, h.Register, http.MethodPost, "/auth/register", body, uuid.Nil)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestHandler_Login(t *testing.T) {
	h, _ := newHandlerFixture(t)

	doJSON(t, h.Register, http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"secret-password"}`, uuid.Nil)

	rec := doJSON(t, h.Login, http.MethodPost, "/auth/login",
		`{"email":"ada@example.com","password":"secret-password"}`, uuid.Nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Token == "" {
		t.Error("expected a token in response")
	}
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	h, _ := newHandlerFixture(t)

	rec := doJSON(t, h.Login, http.MethodPost, "/auth/login",
		`{"email":"ghost@example.com","password":"whatever-pass"}`, uuid.Nil)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestHandler_Me(t *testing.T) {
	h, repo := newHandlerFixture(t)

	u := &User{Name: "Ada", Email: "ada@example.com", Role: RoleUser}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	rec := doJSON(t, h.Me, http.MethodGet, "/me", "", u.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got Profile
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.ID != u.ID {
		t.Errorf("expected user %s, got %s", u.ID, got.ID)
	}
}

func TestHandler_Me_Unauthenticated(t *testing.T) {
	h, _ := newHandlerFixture(t)

	rec := doJSON(t, h.Me, http.MethodGet, "/me", "", uuid.Nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestHandler_UpdateMe(t *testing.T) {
	h, repo := newHandlerFixture(t)

	u := &User{Name: "Ada", Email: "ada@example.com", Role: RoleUser}
	repo.Create(context.Background(), u)

	rec := doJSON(t, h.UpdateMe, http.MethodPut, "/me", `{"name":"Ada L."}`, u.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got Profile
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Name != "Ada L." {
		t.Errorf("expected updated name, got %s", got.Name)
	}
}

func TestHandler_ChangePassword(t *testing.T) {
	h, _ := newHandlerFixture(t)

	rec := doJSON(t, h.Register, http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"secret-password"}`, uuid.Nil)
	var prof Profile
	json.Unmarshal(rec.Body.Bytes(), &prof)

	rec = doJSON(t, h.ChangePassword, http.MethodPut, "/me/password",
		`{"current_password":"secret-password","new_password":"new-password-1"}`, prof.ID)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h.ChangePassword, http.MethodPut, "/me/password",
		`{"current_password":"secret-password","new_password":"another-pass-1"}`, prof.ID)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("old password must be rejected, got %d", rec.Code)
	}
}

func TestProfile_OmitsTimestamps(t *testing.T) {
	u := &User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", Role: RoleAdmin, CreatedAt: time.Now()}
	p := u.Profile()
	if p.Role != RoleAdmin || p.Name != "Ada" {
		t.Errorf("unexpected profile: %+v", p)
	}
	if !u.IsAdmin() {
		t.Error("expected IsAdmin true for admin role")
	}
}
