package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRouter(app *fiber.App, handler *AnalysisHandler) {
	app.Use(logger.New())

	app.Get("/health", handler.HandleHealth)

	v1 := app.Group("/v1")
	v1.Post("/analyze", handler.HandleAnalyze)
}
