package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// setGinTestMode ensures Gin does not write noisy logs during tests
func setGinTestMode() { gin.SetMode(gin.TestMode) }

func signTestToken(t *testing.T, secret, userID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   userID + "@example.com",
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func TestLiveEndpoint(t *testing.T) {
	setGinTestMode()
	r := gin.New()
	r.GET("/live", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	setGinTestMode()
	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/secure", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing token, got %d", w.Code)
	}
}

func TestAuthMiddleware_RejectsMalformedHeader(t *testing.T) {
	setGinTestMode()
	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/secure", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	for _, header := range []string{"Bearer", "Basic abc", "Bearer a b"} {
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, w.Code)
		}
	}
}

func TestAuthMiddleware_AcceptsSignedToken(t *testing.T) {
	setGinTestMode()
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/secure", func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user id"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "test-secret", "user-42", "Client"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for signed token, got %d (%s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "user-42") {
		t.Fatalf("expected user id in response, got %s", w.Body.String())
	}
}

func TestAdminMiddleware_RoleGating(t *testing.T) {
	setGinTestMode()
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	r := gin.New()
	r.Use(AuthMiddleware(), AdminMiddleware())
	r.GET("/admin", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	cases := []struct {
		role string
		want int
	}{
		{"Admin", http.StatusOK},
		{"Commercial", http.StatusForbidden},
		{"Client", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "test-secret", "u1", tc.role))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tc.want {
			t.Errorf("role %s: expected %d, got %d", tc.role, tc.want, w.Code)
		}
	}
}

func TestStaffMiddleware_AdmitsCommercialAndAdmin(t *testing.T) {
	setGinTestMode()
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	r := gin.New()
	r.Use(AuthMiddleware(), StaffMiddleware())
	r.GET("/staff", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	cases := []struct {
		role string
		want int
	}{
		{"Admin", http.StatusOK},
		{"Commercial", http.StatusOK},
		{"Client", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "test-secret", "u1", tc.role))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tc.want {
			t.Errorf("role %s: expected %d, got %d", tc.role, tc.want, w.Code)
		}
	}
}

// Quote request validation happens before any storage access, so a handler
// without a database is enough to exercise the rejection paths.
func TestCreateQuote_RejectsBadRequests(t *testing.T) {
	setGinTestMode()
	handler := NewHandler(nil, nil, nil)

	r := gin.New()
	r.POST("/quotes", handler.CreateQuote)

	cases := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"missing product", `{"quantity": 2}`},
		{"missing quantity", `{"product_id": 1}`},
		{"zero quantity", `{"product_id": 1, "quantity": 0}`},
		{"negative quantity", `{"product_id": 1, "quantity": -3}`},
		{"unsupported currency", `{"product_id": 1, "quantity": 1, "currency": "USD"}`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/quotes", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d (%s)", tc.name, w.Code, w.Body.String())
		}
	}
}

func TestCreateOrder_RequiresAuthentication(t *testing.T) {
	setGinTestMode()
	handler := NewHandler(nil, nil, nil)

	r := gin.New()
	r.Use(AuthMiddleware())
	r.POST("/orders", handler.CreateOrder)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[{"product_id":1,"quantity":1}]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}
