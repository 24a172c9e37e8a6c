package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/solodevhq/megaphone/configs"
	job "github.com/solodevhq/megaphone/internal/jobs"
)

// CronHandler exposes the runners to an external scheduler. Both endpoints
// require the shared cron secret as a bearer token.
type CronHandler struct {
	cfg     *config.Config
	publish *job.PublishJob
	sync    *job.CommentSyncJob
}

func NewCronHandler(cfg *config.Config, publish *job.PublishJob, sync *job.CommentSyncJob) *CronHandler {
	return &CronHandler{cfg: cfg, publish: publish, sync: sync}
}

func (h *CronHandler) authorized(c *fiber.Ctx) bool {
	return c.Get("Authorization") == "Bearer "+h.cfg.CronSecret
}

func (h *CronHandler) PublishScheduledPosts(c *fiber.Ctx) error {
	if !h.authorized(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	summary, err := h.publish.Run(c.Context())
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":   true,
		"processed": summary.Processed,
		"results":   summary.Results,
	})
}

func (h *CronHandler) SyncComments(c *fiber.Ctx) error {
	if !h.authorized(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	summary, err := h.sync.Run(c.Context())
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":        true,
		"apps_processed": summary.AppsProcessed,
		"total_synced":   summary.TotalSynced,
	})
}
