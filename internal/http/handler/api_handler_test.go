package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golinkhq/golink/golink"
	"github.com/golinkhq/golink/internal/app/model"
	"github.com/golinkhq/golink/internal/app/repository"
	"github.com/golinkhq/golink/internal/app/service"
)

type mockLinkService struct {
	createFn func(ctx context.Context, input service.CreateLinkInput) (*model.Link, error)
	getFn    func(ctx context.Context, short string) (*model.Link, error)
	listFn   func(ctx context.Context, limit, offset int) ([]model.Link, error)
	updateFn func(ctx context.Context, short string, input service.UpdateLinkInput) (*model.Link, error)
	deleteFn func(ctx context.Context, short string) error
}

func (m *mockLinkService) CreateLink(ctx context.Context, input service.CreateLinkInput) (*model.Link, error) {
	return m.createFn(ctx, input)
}

func (m *mockLinkService) GetLink(ctx context.Context, short string) (*model.Link, error) {
	return m.getFn(ctx, short)
}

func (m *mockLinkService) ListLinks(ctx context.Context, limit, offset int) ([]model.Link, error) {
	return m.listFn(ctx, limit, offset)
}

func (m *mockLinkService) UpdateLink(ctx context.Context, short string, input service.UpdateLinkInput) (*model.Link, error) {
	return m.updateFn(ctx, short, input)
}

func (m *mockLinkService) DeleteLink(ctx context.Context, short string) error {
	return m.deleteFn(ctx, short)
}

func newAPIApp(svc service.LinkService) *fiber.App {
	app := fiber.New()
	NewAPIHandler(APIDeps{LinkService: svc}).Register(app)
	return app
}

func TestAPIHandler_CreateLink(t *testing.T) {
	svc := &mockLinkService{
		createFn: func(ctx context.Context, input service.CreateLinkInput) (*model.Link, error) {
			if input.Short != "My-Service" {
				t.Fatalf("unexpected short %q", input.Short)
			}
			return &model.Link{Short: "myservice", LongValue: input.LongValue}, nil
		},
	}
	app := newAPIApp(svc)

	body, _ := json.Marshal(map[string]string{
		"short":      "My-Service",
		"long_value": "https://example.com",
	})
	req := httptest.NewRequest("POST", "/api/links/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var created LinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if created.Short != "myservice" {
		t.Fatalf("expected normalized short in response, got %q", created.Short)
	}
}

func TestAPIHandler_CreateLink_Conflict(t *testing.T) {
	svc := &mockLinkService{
		createFn: func(ctx context.Context, input service.CreateLinkInput) (*model.Link, error) {
			return nil, repository.ErrLinkExists
		},
	}
	app := newAPIApp(svc)

	body, _ := json.Marshal(map[string]string{
		"short":      "test",
		"long_value": "https://example.com",
	})
	req := httptest.NewRequest("POST", "/api/links/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestAPIHandler_CreateLink_BrokenTemplate(t *testing.T) {
	svc := &mockLinkService{
		createFn: func(ctx context.Context, input service.CreateLinkInput) (*model.Link, error) {
			return nil, golink.TemplateError{Message: "unclosed if block"}
		},
	}
	app := newAPIApp(svc)

	body, _ := json.Marshal(map[string]string{
		"short":      "prs",
		"long_value": "https://example.com/{{ if path }}never closed",
	})
	req := httptest.NewRequest("POST", "/api/links/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	// Unlike on the resolution surface, template diagnostics are for
	// operators and belong in the response.
	var parsed map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if parsed["detail"] != "unclosed if block" {
		t.Fatalf("expected template diagnostic, got %q", parsed["detail"])
	}
}

func TestAPIHandler_GetLink_NotFound(t *testing.T) {
	svc := &mockLinkService{
		getFn: func(ctx context.Context, short string) (*model.Link, error) {
			return nil, repository.ErrLinkNotFound
		},
	}
	app := newAPIApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/links/missing", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAPIHandler_ListLinks(t *testing.T) {
	svc := &mockLinkService{
		listFn: func(ctx context.Context, limit, offset int) ([]model.Link, error) {
			if limit != 20 || offset != 0 {
				t.Fatalf("unexpected pagination limit=%d offset=%d", limit, offset)
			}
			return []model.Link{{Short: "a"}, {Short: "b"}}, nil
		},
	}
	app := newAPIApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/links/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var parsed struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if parsed.Count != 2 {
		t.Fatalf("expected 2 links, got %d", parsed.Count)
	}
}

func TestAPIHandler_UpdateLink(t *testing.T) {
	svc := &mockLinkService{
		updateFn: func(ctx context.Context, short string, input service.UpdateLinkInput) (*model.Link, error) {
			if short != "test" {
				t.Fatalf("unexpected short %q", short)
			}
			if input.LongValue == nil || *input.LongValue != "https://new.example.com" {
				t.Fatal("expected long_value in update input")
			}
			return &model.Link{Short: short, LongValue: *input.LongValue}, nil
		},
	}
	app := newAPIApp(svc)

	body, _ := json.Marshal(map[string]string{"long_value": "https://new.example.com"})
	req := httptest.NewRequest("PATCH", "/api/links/test", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAPIHandler_DeleteLink(t *testing.T) {
	deleted := ""
	svc := &mockLinkService{
		deleteFn: func(ctx context.Context, short string) error {
			deleted = short
			return nil
		},
	}
	app := newAPIApp(svc)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/links/test", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if deleted != "test" {
		t.Fatalf("expected delete of %q, got %q", "test", deleted)
	}
}
