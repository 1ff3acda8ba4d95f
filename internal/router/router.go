package router

import (
	"log"

	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, cfg *config.Config) {
	// Services
	identity := services.NewIdentityService(db.DB)
	tokens, err := services.NewTokenService([]byte(cfg.TokenSecret), cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}
	mail := services.NewMailService()
	media := services.NewCloudinaryService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)

	// Handlers
	authHandler := handlers.NewAuthHandler(identity, tokens, mail)
	oauthHandler := handlers.NewOAuthHandler(cfg, identity, tokens)
	blogHandler := handlers.NewBlogHandler()
	userHandler := handlers.NewUserHandler(media)

	// Identity resolution runs on every request; it never rejects by itself
	r.Use(middleware.LoadUser(tokens, identity))

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/verify-email", authHandler.VerifyEmail)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		auth.GET("/google", oauthHandler.GoogleLogin)
		auth.GET("/google/callback", oauthHandler.GoogleCallback)

		auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
	}

	blog := api.Group("/blog")
	{
		blog.GET("/getblogs", blogHandler.ListPublished)

		blog.POST("/create-blog", middleware.AuthRequired(), blogHandler.Create)
		blog.GET("/userblog", middleware.AuthRequired(), blogHandler.UserBlogs)

		// Anonymous reads allowed; the visibility rule decides
		blog.GET("/:id", blogHandler.Detail)
		blog.PUT("/:id", middleware.AuthRequired(), blogHandler.Update)
		blog.DELETE("/:id", middleware.AuthRequired(), blogHandler.Delete)
	}

	user := api.Group("/user")
	user.Use(middleware.AuthRequired())
	{
		user.POST("/signature", userHandler.Signature)
		user.PUT("/profile-update", userHandler.UpdateProfile)
	}
}
