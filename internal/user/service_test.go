package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ayushm3018/Vechicle-Request-System/internal/common/auth"
	"github.com/ayushm3018/Vechicle-Request-System/internal/common/config"
	"github.com/ayushm3018/Vechicle-Request-System/internal/common/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(NewRepo(db), testAuthConfig())
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "requisition-service",
		Audience:  "requisition-api",
		TokenTTL:  1,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		Name:     "Alice",
		Email:    "  Alice@Example.COM ",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("email must be normalized, got %q", u.Email)
	}
	if u.Role != RoleEmployee {
		t.Fatalf("default role must be employee, got %s", u.Role)
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret1" {
		t.Fatalf("password must be stored hashed")
	}

	res, err := svc.Login(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected access token")
	}
	if res.ExpiresAt.Before(time.Now()) {
		t.Fatalf("token already expired")
	}

	claims, err := auth.ParseAccessToken(testAuthConfig(), res.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Subject != u.ID {
		t.Fatalf("token subject = %q, want %q", claims.Subject, u.ID)
	}
	if claims.Role != string(RoleEmployee) {
		t.Fatalf("token role = %q, want employee", claims.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"empty name", RegisterInput{Name: " ", Email: "a@b.com", Password: "secret1"}},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"}},
		{"short password", RegisterInput{Name: "A", Email: "a@b.com", Password: "short"}},
		{"bogus role", RegisterInput{Name: "A", Email: "a@b.com", Password: "secret1", Role: "superuser"}},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.in); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// 大小写不同也算同一邮箱
	if _, err := svc.Register(ctx, RegisterInput{Name: "Mallory", Email: "ALICE@example.com", Password: "secret2"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGetUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := svc.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := svc.Get(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMeRoute(t *testing.T) {
	svc := newTestService(t)
	u, err := svc.Register(context.Background(), RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	// 关闭鉴权走调试身份，X-Debug-User 指定当前用户
	authed := r.Group("/api", middleware.JWTAuth(config.AuthConfig{Enabled: false}, nil))
	NewHandler(svc, nil).RegisterAuthedRoutes(authed)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("X-Debug-User", u.ID)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("X-Debug-User", uuid.NewString())
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", w.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1", Role: RoleAdmin}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(ctx, "alice@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty credentials: expected ErrInvalidCredentials, got %v", err)
	}

	res, err := svc.Login(ctx, "Alice@Example.com", "secret1")
	if err != nil {
		t.Fatalf("login with mixed-case email: %v", err)
	}
	if res.User.Role != RoleAdmin {
		t.Fatalf("expected admin role, got %s", res.User.Role)
	}
}
