package main

import (
	"strings"

	"cmcs-backend/internal/claims"
	"cmcs-backend/internal/config"
	"cmcs-backend/internal/database"
	"cmcs-backend/internal/identity"
	"cmcs-backend/internal/reports"
	"cmcs-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	store := storage.NewLocalStore(cfg.UploadPath)
	svc := claims.NewService(database.DB, store)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Errorf("unexpected error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Demo login, no credential check
	api.Post("/auth/login", identity.LoginHandler(cfg, identity.DemoProvider{}))

	// Protected
	protected := api.Group("")
	protected.Use(identity.JWTMiddleware(cfg))

	// Claim workflow
	protected.Post("/claims", claims.SubmitClaimHandler(svc))
	protected.Get("/claims", claims.ListClaimsHandler(svc))
	protected.Get("/claims/:id", claims.GetClaimHandler(svc))
	protected.Get("/claims/:id/track", claims.TrackClaimHandler(svc))
	protected.Get("/documents/:id/download", claims.DownloadDocumentHandler(svc))

	// Reviewer actions
	adminRoutes := protected.Group("")
	adminRoutes.Use(identity.RequireRole(identity.RoleAdmin))

	adminRoutes.Post("/claims/:id/review", claims.StartReviewHandler(svc))
	adminRoutes.Post("/claims/:id/approve", claims.ApproveClaimHandler(svc))
	adminRoutes.Post("/claims/:id/reject", claims.RejectClaimHandler(svc))
	adminRoutes.Get("/admin/reports/claims", reports.MonthlyClaimsReportHandler())

	log.Info("server listening on port ", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
