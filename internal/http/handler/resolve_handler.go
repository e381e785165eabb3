package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golinkhq/golink/golink"
	"github.com/golinkhq/golink/internal/app/repository"
	"github.com/golinkhq/golink/internal/app/service"
	"github.com/golinkhq/golink/internal/http/view"
	"github.com/golinkhq/golink/internal/infra/metrics"
	"go.uber.org/zap"
)

// ResolveDeps groups dependencies required by the resolution handlers.
type ResolveDeps struct {
	Logger         *zap.Logger
	Lookup         golink.ContextLookupFunc
	Links          repository.LinkRepository
	Clicks         repository.ClickEventRepository
	ClickPublisher *service.ClickPublisher
}

// ResolveHandler serves the go/ surface: every path is treated as a
// shortlink resolution request and either redirected, answered with link
// metadata (trailing '+'), or rejected.
type ResolveHandler struct {
	logger         *zap.Logger
	lookup         golink.ContextLookupFunc
	links          repository.LinkRepository
	clicks         repository.ClickEventRepository
	clickPublisher *service.ClickPublisher
}

// NewResolveHandler creates a resolve handler with the provided dependencies.
func NewResolveHandler(deps ResolveDeps) *ResolveHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolveHandler{
		logger:         logger,
		lookup:         deps.Lookup,
		links:          deps.Links,
		clicks:         deps.Clicks,
		clickPublisher: deps.ClickPublisher,
	}
}

// Register wires resolution routes onto the provided router. The catch-all
// must be registered after every other route.
func (h *ResolveHandler) Register(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Get("/*", h.Resolve)
}

// Health is a simple endpoint so we know the service is running.
func (h *ResolveHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "golink",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Resolve handles GET /<anything> and maps resolution outcomes onto HTTP:
// redirects become 302s, metadata requests render link details, and the
// closed error set maps to 400/404/500.
func (h *ResolveHandler) Resolve(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := golink.ResolveContext(ctx, c.Path(), h.lookup)
	if err != nil {
		return h.writeResolveError(c, err)
	}

	switch res.Kind {
	case golink.KindMetadata:
		metrics.ResolutionsTotal.WithLabelValues("metadata").Inc()
		return h.metadata(c, ctx, res.Shortlink)
	default:
		metrics.ResolutionsTotal.WithLabelValues("redirect").Inc()
		h.recordClick(c, res.Shortlink)
		h.logger.Debug("redirecting shortlink",
			zap.String("shortlink", res.Shortlink),
			zap.String("target", res.URL))
		return c.Redirect(res.URL, fiber.StatusFound)
	}
}

func (h *ResolveHandler) writeResolveError(c *fiber.Ctx, err error) error {
	if errors.Is(err, golink.ErrInvalidInput) {
		metrics.ResolutionsTotal.WithLabelValues("invalid_input").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid shortlink",
		})
	}

	var nf golink.NotFoundError
	if errors.As(err, &nf) {
		metrics.ResolutionsTotal.WithLabelValues("not_found").Inc()
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":     "shortlink not found",
			"shortlink": nf.Shortlink,
		})
	}

	var te golink.TemplateError
	if errors.As(err, &te) {
		// A data problem in the stored long value, not the requester's
		// fault. The diagnostic goes to the log, never to the user.
		metrics.ResolutionsTotal.WithLabelValues("template_error").Inc()
		h.logger.Error("stored long value has broken template syntax",
			zap.String("path", c.Path()),
			zap.String("diagnostic", te.Message))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	h.logger.Error("resolution failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

// metadata serves link details for "shortlink+" requests: JSON for API
// clients, a small HTML page for browsers.
func (h *ResolveHandler) metadata(c *fiber.Ctx, ctx context.Context, shortlink string) error {
	link, err := h.links.GetByShort(ctx, shortlink)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":     "shortlink not found",
				"shortlink": shortlink,
			})
		}
		h.logger.Error("failed to load link metadata", zap.String("shortlink", shortlink), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	var clicks int64
	var lastClick *time.Time
	if h.clicks != nil {
		if clicks, err = h.clicks.CountByShortlink(ctx, shortlink); err != nil {
			h.logger.Warn("failed to count clicks", zap.String("shortlink", shortlink), zap.Error(err))
		}
		if lastClick, err = h.clicks.LastClick(ctx, shortlink); err != nil {
			h.logger.Warn("failed to load last click", zap.String("shortlink", shortlink), zap.Error(err))
		}
	}

	if c.Accepts("json", "html") == "html" {
		html, err := view.RenderMetadataPage(view.MetadataPageData{
			Shortlink:   link.Short,
			LongValue:   link.LongValue,
			Description: link.Description,
			Disabled:    link.Disabled,
			ExpiresAt:   link.ExpiresAt,
			CreatedAt:   link.CreatedAt,
			Clicks:      clicks,
			LastClick:   lastClick,
		})
		if err != nil {
			h.logger.Error("failed to render metadata page", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to render page",
			})
		}
		return c.Type("html", "utf-8").SendString(html)
	}

	return c.JSON(fiber.Map{
		"shortlink":   link.Short,
		"long_value":  link.LongValue,
		"description": link.Description,
		"disabled":    link.Disabled,
		"expires_at":  link.ExpiresAt,
		"created_at":  link.CreatedAt,
		"clicks":      clicks,
		"last_click":  lastClick,
	})
}

func (h *ResolveHandler) recordClick(c *fiber.Ctx, shortlink string) {
	if h.clickPublisher == nil {
		return
	}

	// Copy request values out before the goroutine: the fiber context is
	// recycled once the handler returns.
	ip := c.IP()
	userAgent := c.Get(fiber.HeaderUserAgent)
	referrer := c.Get(fiber.HeaderReferer)

	go func() {
		if err := h.clickPublisher.Publish(shortlink, ip, userAgent, referrer); err != nil {
			h.logger.Error("failed to publish click event",
				zap.String("shortlink", shortlink),
				zap.Error(err))
		}
	}()
}
