package report

import (
	"modaudit/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the query interface over HTTP for the reporting layer.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the query routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/query")
	group.Get("/entities", h.HandleEntities)
	group.Get("/references", h.HandleReferences)
	group.Get("/closure", h.HandleClosure)
	group.Get("/dependents/:type/:name", h.HandleDependents)
	group.Get("/operations", h.HandleOperations)
	group.Get("/operations/:mod", h.HandleOperationsByMod)
	group.Get("/conflicts", h.HandleConflicts)
	group.Get("/fragile", h.HandleFragile)
	group.Get("/aggregate", h.HandleAggregate)
	group.Get("/meta", h.HandleMeta)
}

// HandleEntities returns the entity list with property/reference counts.
func (h *Handler) HandleEntities(c *fiber.Ctx) error {
	entities, err := h.service.Entities()
	if err != nil {
		return h.fail(c, "entity query failed", err)
	}
	return c.JSON(entities)
}

// HandleReferences returns the full direct reference list.
func (h *Handler) HandleReferences(c *fiber.Ctx) error {
	refs, err := h.service.References()
	if err != nil {
		return h.fail(c, "reference query failed", err)
	}
	return c.JSON(refs)
}

// HandleClosure returns the full transitive reference list.
func (h *Handler) HandleClosure(c *fiber.Ctx) error {
	rows, err := h.service.TransitiveReferences()
	if err != nil {
		return h.fail(c, "closure query failed", err)
	}
	return c.JSON(rows)
}

// HandleDependents returns everything that transitively depends on one
// definition.
func (h *Handler) HandleDependents(c *fiber.Ctx) error {
	rows, err := h.service.Dependents(c.Params("type"), c.Params("name"))
	if err != nil {
		return h.fail(c, "dependents query failed", err)
	}
	return c.JSON(rows)
}

// HandleOperations returns every recorded mod operation.
func (h *Handler) HandleOperations(c *fiber.Ctx) error {
	ops, err := h.service.Operations()
	if err != nil {
		return h.fail(c, "operation query failed", err)
	}
	return c.JSON(ops)
}

// HandleOperationsByMod returns one mod's operations.
func (h *Handler) HandleOperationsByMod(c *fiber.Ctx) error {
	ops, err := h.service.OperationsByMod(c.Params("mod"))
	if err != nil {
		return h.fail(c, "operation query failed", err)
	}
	return c.JSON(ops)
}

// HandleConflicts returns the classified conflict list.
func (h *Handler) HandleConflicts(c *fiber.Ctx) error {
	verdicts, err := h.service.Conflicts()
	if err != nil {
		return h.fail(c, "conflict classification failed", err)
	}
	return c.JSON(verdicts)
}

// HandleFragile returns the fragile-selector warnings.
func (h *Handler) HandleFragile(c *fiber.Ctx) error {
	ops, err := h.service.FragileOperations()
	if err != nil {
		return h.fail(c, "fragile query failed", err)
	}
	return c.JSON(ops)
}

// HandleAggregate returns the aggregate counts.
func (h *Handler) HandleAggregate(c *fiber.Ctx) error {
	agg, err := h.service.AggregateCounts()
	if err != nil {
		return h.fail(c, "aggregate query failed", err)
	}
	return c.JSON(agg)
}

// HandleMeta returns the run metadata.
func (h *Handler) HandleMeta(c *fiber.Ctx) error {
	meta, err := h.service.Meta()
	if err != nil {
		return h.fail(c, "meta query failed", err)
	}
	if meta == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "store has no run metadata"})
	}
	return c.JSON(meta)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.logger, c)
	l.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}
