package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func callProtected(t *testing.T, token string, handler echo.HandlerFunc, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := handler
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestJWTMiddlewareAcceptsMintedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")

	token, err := GenerateJWT("64f000000000000000000001", "+251900000001", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var gotID, gotType string
	handler := func(c echo.Context) error {
		id, err := ExtractUserID(c)
		if err != nil {
			return err
		}
		gotID = id
		gotType = ExtractUserType(c)
		return c.NoContent(http.StatusOK)
	}

	rec := callProtected(t, token, handler, JWTMiddleware())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != "64f000000000000000000001" {
		t.Errorf("expected claims user ID in context, got %q", gotID)
	}
	if gotType != "user" {
		t.Errorf("expected user type from claims, got %q", gotType)
	}
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")

	rec := callProtected(t, "", okHandler, JWTMiddleware())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddlewareRejectsForeignToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	token, err := GenerateJWT("64f000000000000000000002", "+251900000002", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Setenv("JWT_SECRET", "rotated-secret")
	rec := callProtected(t, token, okHandler, JWTMiddleware())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a token signed under another secret, got %d", rec.Code)
	}
}

func TestRequireUserTypeGatesAdminRoutes(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")

	adminToken, err := GenerateJWT("64f000000000000000000003", "+251900000003", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := callProtected(t, adminToken, okHandler, JWTMiddleware(), RequireUserType("admin"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}

	userToken, err := GenerateJWT("64f000000000000000000004", "+251900000004", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec = callProtected(t, userToken, okHandler, JWTMiddleware(), RequireUserType("admin"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}
}
