package http

import (
	"log/slog"
	"net/http"

	"github.com/gdugdh24/devmatch-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/devmatch-backend/internal/delivery/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	authHandler    *handler.AuthHandler
	profileHandler *handler.ProfileHandler
	requestHandler *handler.RequestHandler
	userHandler    *handler.UserHandler
	chatHandler    *handler.ChatHandler
	authMiddleware *middleware.AuthMiddleware
	allowedOrigins []string
	log            *slog.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	requestHandler *handler.RequestHandler,
	userHandler *handler.UserHandler,
	chatHandler *handler.ChatHandler,
	authMiddleware *middleware.AuthMiddleware,
	allowedOrigins []string,
	log *slog.Logger,
) *Router {
	return &Router{
		authHandler:    authHandler,
		profileHandler: profileHandler,
		requestHandler: requestHandler,
		userHandler:    userHandler,
		chatHandler:    chatHandler,
		authMiddleware: authMiddleware,
		allowedOrigins: allowedOrigins,
		log:            log,
	}
}

func (r *Router) Setup() (*gin.Engine, error) {
	// request bodies may only carry the fields their struct declares
	binding.EnableDecoderDisallowUnknownFields = true
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(r.log))
	router.Use(middleware.CORS(r.allowedOrigins))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", r.authHandler.Signup)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/logout", r.authHandler.Logout)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			profile := protected.Group("/profile")
			{
				profile.GET("/view", r.profileHandler.View)
				profile.PATCH("/edit", r.profileHandler.Edit)
				profile.PATCH("/password", r.authHandler.ChangePassword)
			}

			protected.GET("/users/:user_id", r.profileHandler.GetUser)

			request := protected.Group("/request")
			{
				request.POST("/send/:status/:user_id", r.requestHandler.Send)
				request.POST("/review/:status/:request_id", r.requestHandler.Review)
			}

			user := protected.Group("/user")
			{
				user.GET("/requests/received", r.userHandler.ReceivedRequests)
				user.GET("/connections", r.userHandler.Connections)
				user.GET("/feed", r.userHandler.Feed)
			}

			chat := protected.Group("/chat")
			{
				chat.GET("/:target_user_id", r.chatHandler.Open)
				chat.POST("/:target_user_id/messages", r.chatHandler.SendMessage)
			}

			protected.GET("/ws", r.chatHandler.Socket)
		}
	}

	return router, nil
}
