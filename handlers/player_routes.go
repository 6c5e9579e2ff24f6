// handlers/player_routes.go
package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"idle-miner/middleware"
	"idle-miner/services"

	"github.com/gofiber/fiber/v2"
)

// PayoutStreamInterval is how often the payout stream polls for new entries.
var PayoutStreamInterval = 2 * time.Second

func SetupPlayerRoutes(app *fiber.App, playerService *services.PlayerService, tokenService *services.TokenAccountService) {
	// 🔐 Secured: every route acts on the caller's own record
	player := app.Group("/player", middleware.UserContextMiddleware())

	player.Post("/", func(c *fiber.Ctx) error {
		p, err := playerService.Register(c.UserContext(), middleware.CallerID(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})

	player.Get("/", func(c *fiber.Ctx) error {
		view, err := playerService.GetPlayer(c.UserContext(), middleware.CallerID(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(view)
	})

	player.Post("/claim", func(c *fiber.Ctx) error {
		n, err := countParam(c)
		if err != nil {
			return writeError(c, err)
		}
		res, err := playerService.ClaimMany(c.UserContext(), middleware.CallerID(c), n)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(res)
	})

	player.Post("/upgrade", func(c *fiber.Ctx) error {
		n, err := countParam(c)
		if err != nil {
			return writeError(c, err)
		}
		res, err := playerService.UpgradeMany(c.UserContext(), middleware.CallerID(c), n)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(res)
	})

	player.Post("/token-account", func(c *fiber.Ctx) error {
		account, err := tokenService.EnsureRewardAccount(c.UserContext(), middleware.CallerID(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(account)
	})

	player.Get("/payouts", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)
		payouts, err := playerService.ListPayouts(c.UserContext(), middleware.CallerID(c), limit)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"payouts": payouts})
	})

	player.Get("/payouts/stream", func(c *fiber.Ctx) error {
		return streamPayouts(c, playerService)
	})
}

// countParam reads ?count=n, defaulting to a single step.
func countParam(c *fiber.Ctx) (int, error) {
	raw := c.Query("count")
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: count %q", services.ErrInvalidBatch, raw)
	}
	return n, nil
}

// streamPayouts pushes the caller's new reward payouts as SSE events.
// Polling and the cursor both run on the service clock.
func streamPayouts(c *fiber.Ctx, playerService *services.PlayerService) error {
	userID := middleware.CallerID(c)
	ctx := c.Context()
	clock := playerService.Clock

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	cursor := clock.Now()

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := clock.NewTicker(PayoutStreamInterval)
		defer ticker.Stop()

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case <-ticker.Chan():
				payouts, err := playerService.ListPayoutsSince(ctx, userID, cursor)
				if err != nil {
					log.Printf("[PLAYER] SSE query error for %s: %v", userID, err)
					continue
				}
				if len(payouts) == 0 {
					w.WriteString(":\n\n")
				}
				for _, p := range payouts {
					payload, _ := json.Marshal(p)
					fmt.Fprintf(w, "event: payout\ndata: %s\n\n", payload)
					cursor = p.CreatedAt
				}
				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}
