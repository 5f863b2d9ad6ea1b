package main

import (
	"log"

	"github.com/sossolinski/decisionary-app-sub000/internal/config"
	"github.com/sossolinski/decisionary-app-sub000/internal/database"
	"github.com/sossolinski/decisionary-app-sub000/internal/handlers"
	"github.com/sossolinski/decisionary-app-sub000/internal/middleware"
	"github.com/sossolinski/decisionary-app-sub000/internal/services"
	"github.com/sossolinski/decisionary-app-sub000/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Decisionary API
// @version         1.0
// @description     Facilitator-led tabletop-exercise platform: scenarios, timed injects, live sessions
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	hub := ws.NewHub()

	authService := services.NewAuthService(db, cfg.JWTSecret)
	scenarioService := services.NewScenarioService(db)
	injectService := services.NewInjectService(db)
	orderingService := services.NewOrderingService(db)
	sessionService := services.NewSessionService(db)
	deliveryService := services.NewDeliveryService(db)
	roleService := services.NewRoleService(db)
	actionService := services.NewActionService(db, deliveryService)

	authHandler := handlers.NewAuthHandler(authService)
	scenarioHandler := handlers.NewScenarioHandler(scenarioService)
	injectHandler := handlers.NewInjectHandler(injectService, orderingService, scenarioService, hub)
	sessionHandler := handlers.NewSessionHandler(sessionService, deliveryService, roleService, actionService, hub)
	playHandler := handlers.NewPlayHandler(sessionService, deliveryService, actionService, hub)
	wsHandler := handlers.NewWSHandler(hub)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ws/session/:id", wsHandler.HandleSessionWebSocket)
	r.GET("/ws/scenario/:id", wsHandler.HandleScenarioWebSocket)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		scenarios := api.Group("/scenarios")
		scenarios.Use(middleware.JWTAuth(authService), middleware.FacilitatorOnly())
		{
			scenarios.GET("", scenarioHandler.ListScenarios)
			scenarios.POST("", scenarioHandler.CreateScenario)
			scenarios.GET("/:id", scenarioHandler.GetScenario)
			scenarios.PUT("/:id", scenarioHandler.UpdateScenario)
			scenarios.DELETE("/:id", scenarioHandler.DeleteScenario)

			scenarios.POST("/:id/shares", scenarioHandler.ShareScenario)
			scenarios.DELETE("/:id/shares/:share_id", scenarioHandler.RevokeShare)

			scenarios.GET("/:id/roles", scenarioHandler.ListRoles)
			scenarios.POST("/:id/roles", scenarioHandler.CreateRole)

			scenarios.POST("/:id/injects", injectHandler.AttachInject)
			scenarios.DELETE("/:id/injects/:attachment_id", injectHandler.DetachInject)
			scenarios.PUT("/:id/injects/:attachment_id/schedule", injectHandler.RescheduleInject)
			scenarios.POST("/:id/injects/:attachment_id/move", injectHandler.MoveInject)
		}

		roles := api.Group("/roles")
		roles.Use(middleware.JWTAuth(authService), middleware.FacilitatorOnly())
		{
			roles.PUT("/:id", scenarioHandler.UpdateRole)
			roles.DELETE("/:id", scenarioHandler.DeleteRole)
		}

		injects := api.Group("/injects")
		injects.Use(middleware.JWTAuth(authService), middleware.FacilitatorOnly())
		{
			injects.GET("", injectHandler.ListInjects)
			injects.POST("", injectHandler.CreateInject)
			injects.PUT("/:id", injectHandler.UpdateInject)
			injects.DELETE("/:id", injectHandler.DeleteInject)
		}

		sessions := api.Group("/sessions")
		sessions.Use(middleware.JWTAuth(authService), middleware.FacilitatorOnly())
		{
			sessions.GET("", sessionHandler.ListSessions)
			sessions.POST("", sessionHandler.CreateSession)
			sessions.GET("/:id", sessionHandler.GetSession)
			sessions.POST("/:id/start", sessionHandler.StartSession)
			sessions.POST("/:id/end", sessionHandler.EndSession)
			sessions.POST("/:id/restart", sessionHandler.RestartSession)

			sessions.POST("/:id/deliver-due", sessionHandler.DeliverDue)
			sessions.POST("/:id/deliver-next", sessionHandler.DeliverNext)
			sessions.POST("/:id/deliver", sessionHandler.DeliverInject)
			sessions.POST("/:id/quick-message", sessionHandler.QuickMessage)
			sessions.GET("/:id/pending", sessionHandler.PendingInjects)

			sessions.GET("/:id/roster", sessionHandler.GetRoster)
			sessions.POST("/:id/roles/assign", sessionHandler.AssignRole)
			sessions.GET("/:id/actions", sessionHandler.ListActions)

			sessions.GET("/:id/situation", sessionHandler.GetSituation)
			sessions.PUT("/:id/situation", sessionHandler.UpdateSituation)
		}

		play := api.Group("/play")
		{
			play.POST("/join", playHandler.Join)
			play.GET("/sessions/:id/feed", playHandler.GetFeed)
			play.POST("/sessions/:id/actions", playHandler.RecordAction)
			play.GET("/sessions/:id/situation", playHandler.GetSituation)
			play.PUT("/sessions/:id/situation", playHandler.UpdateSituation)
		}
	}

	log.Printf("server listening on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
