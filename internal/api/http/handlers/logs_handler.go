package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/haf/internal/api/dto"
	"github.com/spec-kit/haf/internal/domain"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 50
)

// LastEntrySource returns the latest registered entry.
type LastEntrySource interface {
	LastEntry(ctx context.Context) (domain.LogEntry, error)
}

// RecentSource lists recent entries from the configured sink.
type RecentSource interface {
	Recent(ctx context.Context, limit int) ([]domain.LogEntry, error)
}

// LogsHandler exposes registered entries.
type LogsHandler struct {
	last   LastEntrySource
	recent RecentSource
}

// NewLogsHandler constructs handler.
func NewLogsHandler(last LastEntrySource, recent RecentSource) *LogsHandler {
	return &LogsHandler{last: last, recent: recent}
}

// Last GET /logs/last.
func (h *LogsHandler) Last(c *fiber.Ctx) error {
	entry, err := h.last.LastEntry(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLogEntryResponse(entry)})
}

// Recent GET /logs/recent?limit=n.
func (h *LogsHandler) Recent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultRecentLimit)
	if limit <= 0 || limit > maxRecentLimit {
		limit = defaultRecentLimit
	}
	items := []dto.LogEntryResponse{}
	if h.recent != nil {
		entries, err := h.recent.Recent(c.UserContext(), limit)
		if err != nil {
			return err
		}
		for _, e := range entries {
			items = append(items, dto.NewLogEntryResponse(e))
		}
	}
	return c.JSON(fiber.Map{"data": items})
}
