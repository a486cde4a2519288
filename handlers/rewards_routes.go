// handlers/rewards_routes.go
package handlers

import (
	"strconv"

	"tourism-rewards-system/middleware"
	"tourism-rewards-system/models"
	"tourism-rewards-system/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SetupRewardsRoutes wires the engine's operation surface. The gateway
// forwards authenticated traffic with X-User-ID; handlers stay thin and
// push everything into the service.
func SetupRewardsRoutes(app *fiber.App, svc *services.RewardsService, log *zap.Logger, rateLimitPerMinute int) {
	secured := app.Group("/", middleware.UserContextMiddleware(log))
	mutating := middleware.RateLimitMiddleware(rateLimitPerMinute)

	secured.Get("/quests", func(c *fiber.Ctx) error {
		return c.JSON(svc.Catalog())
	})

	secured.Post("/user/quests/:id/complete", mutating, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		questID := c.Params("id")

		var req struct {
			Metadata map[string]string `json:"metadata"`
		}
		// empty body is fine; metadata is optional
		_ = c.BodyParser(&req)

		result, err := svc.CompleteQuest(c.Context(), userID, questID, req.Metadata)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	secured.Get("/exchange/rates", func(c *fiber.Ctx) error {
		return c.JSON(svc.Rates())
	})

	secured.Post("/user/xp/exchange", mutating, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			RateIndex int `json:"rate_index"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}

		result, err := svc.ExchangeXPForVoucher(c.Context(), userID, req.RateIndex)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	secured.Post("/user/vouchers/:id/redeem", mutating, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		voucher, err := svc.RedeemVoucher(c.Context(), userID, c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "voucher redeemed", "voucher": voucher})
	})

	secured.Get("/user/vouchers", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		vouchers, err := svc.ListVouchers(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(vouchers)
	})

	secured.Get("/user/stats", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		stats, err := svc.GetUserStats(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(stats)
	})

	secured.Get("/user/dashboard", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		dashboard, err := svc.GetDashboard(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dashboard)
	})

	secured.Get("/user/transactions", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		txs, err := svc.GetTransactions(c.Context(), userID, limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(txs)
	})

	// Admin endpoints
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(log), middleware.RequireRole("admin"))

	admin.Post("/xp/grant", func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
			XP     int64  `json:"xp"`
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if req.UserID == "" || req.XP <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and positive xp required"})
		}

		user, err := svc.GrantXP(c.Context(), req.UserID, req.XP, req.Reason)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "XP granted", "user": user})
	})

	admin.Post("/xp/reset", func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id required"})
		}

		user, err := svc.ResetXP(c.Context(), req.UserID, req.Reason)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "XP reset", "user": user})
	})

	admin.Get("/audit/ledger", func(c *fiber.Ctx) error {
		mismatched, err := svc.AuditLedger(c.Context())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"mismatched_users": mismatched,
			"ok":               len(mismatched) == 0,
		})
	})
}

// respondError maps engine reason codes onto statuses; anything else is a
// plain 500 with no internal detail leaked.
func respondError(c *fiber.Ctx, err error) error {
	if engineErr, ok := models.AsEngineError(err); ok {
		return c.Status(engineErr.HTTPStatus()).JSON(fiber.Map{
			"error": engineErr.Message,
			"code":  engineErr.Code,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
