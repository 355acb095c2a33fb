package main

import (
	"log"
	"restaurant_manager/database"
	"restaurant_manager/handler"
	"restaurant_manager/helper"
	"restaurant_manager/router"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, X-Idempotency-Key",
		AllowCredentials: true,
		ExposeHeaders:    "Set-Cookie",
		MaxAge:           600,
	}))

	database.ConnectDB()

	handler.StartPendingExpireWorker()
	handler.StartNotifierScheduler()
	defer handler.StopNotifierScheduler()
	helper.StartMaintenanceCron()
	defer helper.StopMaintenanceCron()

	router.SetupRoutes(app)
	log.Fatal(app.Listen(":8002"))
}
