// handlers/game_routes.go
package handlers

import (
	"strconv"

	"idle-miner/middleware"
	"idle-miner/services"

	"github.com/gofiber/fiber/v2"
)

type fundVaultRequest struct {
	Amount string `json:"amount"`
}

func SetupGameRoutes(app *fiber.App, gameService *services.GameService, tokenService *services.TokenAccountService) {
	// 🔓 Public, gateway auth only
	app.Get("/game/config", func(c *fiber.Ctx) error {
		cfg, err := gameService.Config(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(cfg)
	})

	// 🔐 Admin: caller is checked against the game admin by the services
	admin := app.Group("/admin", middleware.UserContextMiddleware())

	admin.Post("/game/initialize", func(c *fiber.Ctx) error {
		var params services.InitializeParams
		if err := c.BodyParser(&params); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
				"cause": err.Error(),
			})
		}
		cfg, err := gameService.Initialize(c.UserContext(), middleware.CallerID(c), params)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cfg)
	})

	admin.Post("/vault/fund", func(c *fiber.Ctx) error {
		var req fundVaultRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
				"cause": err.Error(),
			})
		}
		amount, err := strconv.ParseUint(req.Amount, 10, 64)
		if err != nil || amount == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "amount must be a positive integer string",
			})
		}
		vault, err := tokenService.FundVault(c.UserContext(), middleware.CallerID(c), amount)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(vault)
	})
}
