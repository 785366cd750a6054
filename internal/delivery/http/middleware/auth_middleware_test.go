package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"mockraft/internal/logger"
	"mockraft/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

func newAuthApp(svc jwt.Service) *fiber.App {
	app := fiber.New()
	app.Use(NewErrorMiddleware(logger.Discard()).Middleware())
	app.Use(NewAuthMiddleware(svc).Middleware())
	app.Get("/", func(c fiber.Ctx) error {
		id, ok := UserID(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(id.String())
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	svc := jwt.NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour)
	uid := uuid.New()

	access, err := svc.GenerateAccessToken(uid, "a@example.com")
	if err != nil {
		t.Fatalf("access token: %v", err)
	}
	refresh, err := svc.GenerateRefreshToken(uid)
	if err != nil {
		t.Fatalf("refresh token: %v", err)
	}
	chat, _, err := svc.GenerateChatToken(uid, "a@example.com")
	if err != nil {
		t.Fatalf("chat token: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic " + access, fiber.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", fiber.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, fiber.StatusUnauthorized},
		{"chat token", "Bearer " + chat, fiber.StatusUnauthorized},
		{"access token", "Bearer " + access, fiber.StatusOK},
		{"lowercase scheme", "bearer " + access, fiber.StatusOK},
	}

	app := newAuthApp(svc)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	if _, ok := BearerToken("Bearer   "); ok {
		t.Fatalf("expected empty token to be rejected")
	}
	tok, ok := BearerToken("  Bearer abc.def  ")
	if !ok || tok != "abc.def" {
		t.Fatalf("expected abc.def, got %q ok=%v", tok, ok)
	}
}
