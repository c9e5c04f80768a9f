package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func TestSkipped(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/livez", true},
		{"/metrics", true},
		{"/api/v1/availability/2026-03-10", false},
		{"/", false},
	}
	for _, tt := range tests {
		if got := skipped(tt.path, DefaultSkipPrefixes); got != tt.want {
			t.Errorf("skipped(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFiberMiddlewarePassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Get("/livez", func(c fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	app.Get("/api/v1/appointments/:id", func(c fiber.Ctx) error {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "appointment not found"})
	})

	for path, want := range map[string]int{
		"/livez":                 http.StatusOK,
		"/api/v1/appointments/x": http.StatusNotFound,
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("GET %s status = %d, want %d", path, resp.StatusCode, want)
		}
	}
}
