package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golinkhq/golink/golink"
	"github.com/golinkhq/golink/internal/app/model"
	"github.com/golinkhq/golink/internal/app/repository"
	"github.com/golinkhq/golink/internal/app/service"
	"go.uber.org/zap"
)

// APIDeps groups dependencies required by API handlers.
type APIDeps struct {
	Logger      *zap.Logger
	LinkService service.LinkService
}

// APIHandler implements the management API endpoints.
type APIHandler struct {
	logger      *zap.Logger
	linkService service.LinkService
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:      logger,
		linkService: deps.LinkService,
	}
}

// Register wires API routes onto the provided router.
func (h *APIHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	{
		links := api.Group("/links")
		{
			links.Post("/", h.CreateLink)
			links.Get("/", h.ListLinks)
			links.Get("/:short", h.GetLink)
			links.Patch("/:short", h.UpdateLink)
			links.Delete("/:short", h.DeleteLink)
		}
	}
}

// LinkRequest represents the request body for creating a link.
type LinkRequest struct {
	Short       string     `json:"short" validate:"required"`
	LongValue   string     `json:"long_value" validate:"required"`
	Description string     `json:"description,omitempty"`
	Disabled    bool       `json:"disabled,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// LinkResponse represents a stored link in API responses.
type LinkResponse struct {
	Short       string     `json:"short"`
	LongValue   string     `json:"long_value"`
	Description string     `json:"description,omitempty"`
	Disabled    bool       `json:"disabled"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func linkResponse(link *model.Link) LinkResponse {
	return LinkResponse{
		Short:       link.Short,
		LongValue:   link.LongValue,
		Description: link.Description,
		Disabled:    link.Disabled,
		ExpiresAt:   link.ExpiresAt,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	}
}

// CreateLink handles POST /api/links
func (h *APIHandler) CreateLink(c *fiber.Ctx) error {
	var req LinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.Short == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "short is required",
		})
	}
	if req.LongValue == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "long_value is required",
		})
	}

	link, err := h.linkService.CreateLink(userContext(c), service.CreateLinkInput{
		Short:       req.Short,
		LongValue:   req.LongValue,
		Description: req.Description,
		Disabled:    req.Disabled,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		return h.writeServiceError(c, err, req.Short)
	}

	return c.Status(fiber.StatusCreated).JSON(linkResponse(link))
}

// ListLinks handles GET /api/links
func (h *APIHandler) ListLinks(c *fiber.Ctx) error {
	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed := c.QueryInt("limit"); parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed := c.QueryInt("offset"); parsed >= 0 {
			offset = parsed
		}
	}

	links, err := h.linkService.ListLinks(userContext(c), limit, offset)
	if err != nil {
		h.logger.Error("failed to list links", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list links",
		})
	}

	response := make([]LinkResponse, len(links))
	for i := range links {
		response[i] = linkResponse(&links[i])
	}

	return c.JSON(fiber.Map{
		"links":  response,
		"limit":  limit,
		"offset": offset,
		"count":  len(response),
	})
}

// GetLink handles GET /api/links/:short
func (h *APIHandler) GetLink(c *fiber.Ctx) error {
	short := c.Params("short")

	link, err := h.linkService.GetLink(userContext(c), short)
	if err != nil {
		return h.writeServiceError(c, err, short)
	}

	return c.JSON(linkResponse(link))
}

// UpdateLinkRequest represents the request body for updating a link. Absent
// fields are left unchanged.
type UpdateLinkRequest struct {
	LongValue   *string    `json:"long_value,omitempty"`
	Description *string    `json:"description,omitempty"`
	Disabled    *bool      `json:"disabled,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// UpdateLink handles PATCH /api/links/:short
func (h *APIHandler) UpdateLink(c *fiber.Ctx) error {
	short := c.Params("short")

	var req UpdateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	link, err := h.linkService.UpdateLink(userContext(c), short, service.UpdateLinkInput{
		LongValue:   req.LongValue,
		Description: req.Description,
		Disabled:    req.Disabled,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		return h.writeServiceError(c, err, short)
	}

	return c.JSON(linkResponse(link))
}

// DeleteLink handles DELETE /api/links/:short
func (h *APIHandler) DeleteLink(c *fiber.Ctx) error {
	short := c.Params("short")

	if err := h.linkService.DeleteLink(userContext(c), short); err != nil {
		return h.writeServiceError(c, err, short)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// writeServiceError translates link service failures into API responses.
// Template diagnostics are operator-facing here, unlike on the resolution
// surface where they stay in the log.
func (h *APIHandler) writeServiceError(c *fiber.Ctx, err error, short string) error {
	switch {
	case errors.Is(err, service.ErrInvalidShortlink):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "shortlink normalizes to empty string",
		})
	case errors.Is(err, service.ErrEmptyLongValue):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "long_value is required",
		})
	case errors.Is(err, repository.ErrLinkExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "shortlink already exists",
		})
	case errors.Is(err, repository.ErrLinkNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "link not found",
		})
	}

	var te golink.TemplateError
	if errors.As(err, &te) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "long_value has invalid template syntax",
			"detail": te.Message,
		})
	}

	h.logger.Error("link operation failed", zap.Error(err), zap.String("short", short))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

// userContext returns the request-scoped context, falling back to Background
// when fiber has none attached.
func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
