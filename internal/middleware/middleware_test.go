package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestEnsureClientID(t *testing.T) {
	app := fiber.New()
	app.Use(EnsureClientID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(ClientID(c))
	})

	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{name: "header", target: "/", header: "abc", want: "abc"},
		{name: "query", target: "/?clientId=q1", want: "q1"},
		{name: "header wins", target: "/?clientId=q1", header: "h1", want: "h1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set(ClientIDHeader, tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			body, _ := io.ReadAll(resp.Body)
			if string(body) != tt.want {
				t.Fatalf("client ID = %q, want %q", body, tt.want)
			}
			if got := resp.Header.Get(ClientIDHeader); got != tt.want {
				t.Fatalf("echoed header = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("generated", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		if len(body) != 36 {
			t.Fatalf("expected a generated uuid, got %q", body)
		}
	})
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(RequestLogger(nil))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusTeapot) })
	app.Get("/fail", func(c *fiber.Ctx) error { return fiber.ErrForbidden })

	for target, want := range map[string]int{"/ok": fiber.StatusTeapot, "/fail": fiber.StatusForbidden} {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != want {
			t.Fatalf("%s: status %d, want %d", target, resp.StatusCode, want)
		}
	}
}

func TestWebSocketUpgrade(t *testing.T) {
	app := fiber.New()
	app.Get("/ws/session/:sessionId", WebSocketUpgrade(func(id string) bool { return id == "known" }), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("sessionID").(string))
	})

	tests := []struct {
		name    string
		target  string
		upgrade bool
		want    int
	}{
		{name: "plain request", target: "/ws/session/known", want: fiber.StatusUpgradeRequired},
		{name: "unknown session", target: "/ws/session/nope", upgrade: true, want: fiber.StatusNotFound},
		{name: "known session", target: "/ws/session/known", upgrade: true, want: fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
