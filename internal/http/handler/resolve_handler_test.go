package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golinkhq/golink/internal/app/model"
	"github.com/golinkhq/golink/internal/app/repository"
)

type mockLinks struct {
	links map[string]*model.Link
}

func (m *mockLinks) Create(ctx context.Context, link *model.Link) error { return nil }

func (m *mockLinks) GetByShort(ctx context.Context, short string) (*model.Link, error) {
	if link, ok := m.links[short]; ok {
		return link, nil
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinks) List(ctx context.Context, limit, offset int) ([]model.Link, error) {
	return nil, nil
}

func (m *mockLinks) Update(ctx context.Context, link *model.Link) error { return nil }
func (m *mockLinks) Delete(ctx context.Context, short string) error     { return nil }
func (m *mockLinks) Shorts(ctx context.Context) ([]string, error)       { return nil, nil }

type mockClicks struct {
	count int64
	last  *time.Time
}

func (m *mockClicks) Create(ctx context.Context, event *model.ClickEvent) error { return nil }

func (m *mockClicks) CountByShortlink(ctx context.Context, short string) (int64, error) {
	return m.count, nil
}

func (m *mockClicks) LastClick(ctx context.Context, short string) (*time.Time, error) {
	return m.last, nil
}

func newResolveApp(t *testing.T) *fiber.App {
	t.Helper()

	stored := map[string]string{
		"test":   "https://example.com/",
		"docs":   "https://example.com/docs",
		"broken": "https://example.com/{{ if path }}never closed",
	}
	links := &mockLinks{links: map[string]*model.Link{
		"test": {Short: "test", LongValue: "https://example.com/", Description: "example", CreatedAt: time.Now()},
	}}

	handler := NewResolveHandler(ResolveDeps{
		Lookup: func(ctx context.Context, short string) (string, bool) {
			longValue, ok := stored[short]
			return longValue, ok
		},
		Links:  links,
		Clicks: &mockClicks{count: 3},
	})

	app := fiber.New()
	handler.Register(app)
	return app
}

func TestResolveHandler_Redirect(t *testing.T) {
	app := newResolveApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "https://example.com/" {
		t.Fatalf("unexpected redirect target %q", loc)
	}
}

func TestResolveHandler_RedirectAppendsPath(t *testing.T) {
	app := newResolveApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/docs/install/linux", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "https://example.com/docs/install/linux" {
		t.Fatalf("unexpected redirect target %q", loc)
	}
}

func TestResolveHandler_NormalizesShortlink(t *testing.T) {
	app := newResolveApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/T-EST", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
}

func TestResolveHandler_NotFound(t *testing.T) {
	app := newResolveApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestResolveHandler_InvalidInput(t *testing.T) {
	app := newResolveApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestResolveHandler_BrokenTemplateIsInternalError(t *testing.T) {
	app := newResolveApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/broken", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	// The template diagnostic must not leak to the requester.
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "internal server error" {
		t.Fatalf("unexpected error body %q", body["error"])
	}
}

func TestResolveHandler_Metadata(t *testing.T) {
	app := newResolveApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/test+", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Shortlink string `json:"shortlink"`
		LongValue string `json:"long_value"`
		Clicks    int64  `json:"clicks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Shortlink != "test" || body.LongValue != "https://example.com/" {
		t.Fatalf("unexpected metadata %+v", body)
	}
	if body.Clicks != 3 {
		t.Fatalf("expected 3 clicks, got %d", body.Clicks)
	}
}

func TestResolveHandler_MetadataHTML(t *testing.T) {
	app := newResolveApp(t)

	req := httptest.NewRequest("GET", "/test+", nil)
	req.Header.Set("Accept", "text/html")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestResolveHandler_MetadataNeverRedirects(t *testing.T) {
	app := newResolveApp(t)

	// The shortlink resolves, but the '+' marks this a metadata request.
	resp, err := app.Test(httptest.NewRequest("GET", "/docs+", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == fiber.StatusFound {
		t.Fatal("metadata request must not redirect")
	}
	// docs is resolvable but has no stored row in the mock repository.
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestResolveHandler_Health(t *testing.T) {
	app := newResolveApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
