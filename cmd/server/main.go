package main

import (
	"context"
	"log"
	"os"
	"runtime"
	"time"

	"backend-acting/internal/config"
	"backend-acting/internal/http/handler"
	"backend-acting/internal/http/middleware"
	"backend-acting/internal/poller"
	"backend-acting/internal/repository"
	"backend-acting/internal/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	app := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
	})

	config.LoadEnv()
	config.InitRedis()
	config.InitDB()
	defer config.CloseDB()

	repo := repository.NewQueueRepository(config.DB)
	engine := scheduler.New(repo)

	// Poll-and-pull against the shared store; no push transport by design
	pollInterval := config.GetDurationEnv("POLL_INTERVAL", 5*time.Second)
	suppressWindow := config.GetDurationEnv("SUPPRESS_WINDOW", 2*time.Second)
	board := poller.New(engine, pollInterval, suppressWindow)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go board.Run(ctx)

	acting := handler.NewActingHandler(engine, board, repo)

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Acting queue API running",
		})
	})

	app.Post("/auth/login", handler.Login)

	// Base API (login required)
	api := app.Group("/api", middleware.JWTAuth())

	api.Post("/logout", handler.Logout)

	// Board + queue reads
	api.Get("/acting/board", acting.GetBoard)
	api.Get("/acting", acting.ListActings)
	api.Get("/acting/doctor/:doctorId", acting.GetDoctorQueue)

	// Queue intents
	api.Post("/acting", acting.AddActing)
	api.Post("/acting/start", acting.StartActing)
	api.Post("/acting/complete", acting.CompleteActing)
	api.Post("/acting/cancel", acting.CancelActing)
	api.Post("/acting/move", acting.MoveActing)
	api.Post("/acting/reorder", acting.ReorderActing)
	api.Put("/acting/:id", acting.UpdateActing)

	// Doctor status override
	api.Put("/doctors/:id/status", acting.SetDoctorStatus)

	// Statistics
	api.Get("/stats/doctors", middleware.RoleAuth("admin", "doctor"), acting.GetDoctorStats)
	api.Get("/stats/daily", middleware.RoleAuth("admin", "doctor"), acting.GetDailyStats)
	api.Get("/stats/today", acting.GetTodayCompleted)

	addr := os.Getenv("APP_HOST") + ":" + os.Getenv("APP_PORT")
	log.Println("Server running on", addr)
	log.Fatal(app.Listen(addr))
}
