package app

import (
	"log"
	"time"

	"politicianfinder/internal/config"
	"politicianfinder/internal/middleware"
	"politicianfinder/internal/model"
	"politicianfinder/internal/repository"
	"politicianfinder/internal/service"
	"politicianfinder/internal/util"
	"politicianfinder/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	// Set Gin mode
	if cfg.ServerPort == "5000" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware(cfg.ClientURL))

	// Rate limiting middleware (if enabled)
	if cfg.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		r.Use(rateLimiter.Middleware())
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		panic("Failed to connect to database: " + err.Error())
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&model.User{},
		&model.Politician{},
		&model.Evaluation{},
		&model.Rating{},
		&model.Post{},
		&model.Comment{},
		&model.Notification{},
		&model.Report{},
	); err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// Initialize Redis with retry logic
	redisClient := initRedisWithRetry(cfg)

	// Initialize RabbitMQ with retry logic
	rabbitMQ := initRabbitMQWithRetry(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	politicianRepo := repository.NewPoliticianRepository(db, redisClient)
	ratingRepo := repository.NewRatingRepository(db)
	postRepo := repository.NewPostRepository(db, redisClient)
	commentRepo := repository.NewCommentRepository(db, redisClient)
	notificationRepo := repository.NewNotificationRepository(db, redisClient)
	reportRepo := repository.NewReportRepository(db)

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("WebSocket hub started")

	// Initialize Cloudinary client
	var cloudinaryClient *util.CloudinaryClient
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		var err error
		cloudinaryClient, err = util.NewCloudinaryClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v. Portrait uploads will be disabled.", err)
		} else {
			log.Println("Cloudinary initialized successfully")
		}
	} else {
		log.Println("Cloudinary credentials not configured. Portrait uploads will be disabled.")
	}

	// Initialize services
	emailService := service.NewEmailService(cfg, rabbitMQ)
	notificationService := service.NewNotificationService(notificationRepo, rabbitMQ)
	notificationService.SetWSHub(wsHub)
	authService := service.NewAuthService(userRepo, emailService, cfg.JWTSecret)
	userService := service.NewUserService(userRepo, politicianRepo, postRepo)
	politicianService := service.NewPoliticianService(politicianRepo, ratingRepo, redisClient, cloudinaryClient)
	ratingService := service.NewRatingService(ratingRepo, politicianRepo, politicianService)
	postService := service.NewPostService(postRepo, commentRepo, politicianRepo)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, notificationService)
	reportService := service.NewReportService(reportRepo, politicianRepo, ratingRepo, userRepo, notificationService, emailService, cfg.ReportOutputDir)

	// Start async workers when RabbitMQ is available
	if rabbitMQ != nil {
		emailWorker := service.NewEmailWorker(emailService, rabbitMQ)
		if err := emailWorker.Start(); err != nil {
			log.Printf("Warning: Failed to start email worker: %v", err)
		} else {
			log.Println("Email worker started successfully")
		}

		notificationWorker := service.NewNotificationWorker(rabbitMQ, wsHub)
		if err := notificationWorker.Start(); err != nil {
			log.Printf("Warning: Failed to start notification worker: %v", err)
		} else {
			log.Println("Notification worker started successfully")
		}
	} else {
		log.Println("Workers not started - RabbitMQ connection failed. Email and notification fan-out fall back to direct delivery.")
	}

	// Initialize handlers
	authHandler := NewAuthHandler(authService, cfg.JWTSecret)
	userHandler := NewUserHandler(userService)
	politicianHandler := NewPoliticianHandler(politicianService)
	ratingHandler := NewRatingHandler(ratingService)
	postHandler := NewPostHandler(postService)
	commentHandler := NewCommentHandler(commentService)
	notificationHandler := NewNotificationHandler(notificationService)
	reportHandler := NewReportHandler(reportService)

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/verify-otp", authHandler.VerifyOTP)
			auth.POST("/resend-otp", authHandler.ResendOTP)
			auth.POST("/refresh-token", authHandler.RefreshToken)

			// Protected routes
			auth.GET("/me", authHandler.AuthMiddleware(), authHandler.GetMe)
		}

		// Politician routes
		politicians := api.Group("/politicians")
		{
			// Public routes
			// IMPORTANT: More specific routes must be registered before wildcard routes
			politicians.GET("/ranking", politicianHandler.GetRanking)
			politicians.GET("/:id/evaluations", politicianHandler.GetEvaluations)
			politicians.GET("/:id/ratings", ratingHandler.GetRatings)
			politicians.GET("/:id", politicianHandler.GetPolitician)
			politicians.GET("", politicianHandler.SearchPoliticians)

			// Protected routes
			politicians.Use(authHandler.AuthMiddleware())
			{
				politicians.POST("/:id/ratings", ratingHandler.RatePolitician)
				politicians.GET("/:id/ratings/me", ratingHandler.GetMyRating)
				politicians.DELETE("/:id/ratings/me", ratingHandler.DeleteRating)
			}
		}

		// Post routes
		posts := api.Group("/posts")
		{
			// Public routes
			posts.GET("/:id/comments", commentHandler.GetCommentsByPost)
			posts.GET("/:id/comments/count", commentHandler.GetCommentCount)
			posts.GET("/:id", postHandler.GetPost)
			posts.GET("", postHandler.ListPosts)

			// Protected routes
			posts.Use(authHandler.AuthMiddleware())
			{
				posts.POST("", postHandler.CreatePost)
				posts.PUT("/:id", postHandler.UpdatePost)
				posts.DELETE("/:id", postHandler.DeletePost)
			}
		}

		// Comment routes. Writes use optional authentication: the policy
		// layer decides what anonymous callers may do, so denials carry
		// their reason instead of being short-circuited at the middleware.
		comments := api.Group("/comments")
		{
			comments.GET("/:id", commentHandler.GetComment)

			comments.Use(authHandler.OptionalAuthMiddleware())
			{
				comments.POST("", commentHandler.CreateComment)
				comments.PATCH("/:id", commentHandler.UpdateComment)
				comments.DELETE("/:id", commentHandler.DeleteComment)
			}
		}

		// Notification routes
		notifications := api.Group("/notifications")
		{
			notifications.Use(authHandler.AuthMiddleware())
			{
				notifications.GET("", notificationHandler.GetNotifications)
				notifications.GET("/unread", notificationHandler.GetUnreadNotifications)
				notifications.GET("/unread/count", notificationHandler.GetUnreadCount)
				notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
				notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
				notifications.DELETE("/:id", notificationHandler.DeleteNotification)
			}
		}

		// Report routes
		reports := api.Group("/reports")
		{
			reports.Use(authHandler.AuthMiddleware())
			{
				reports.POST("", reportHandler.PurchaseReport)
				reports.GET("", reportHandler.GetMyReports)
				reports.GET("/:id", reportHandler.GetReport)
				reports.GET("/:id/download", reportHandler.DownloadReport)
			}
		}

		// Admin routes
		admin := api.Group("/admin")
		{
			admin.Use(authHandler.AuthMiddleware())
			admin.Use(authHandler.AdminMiddleware())
			{
				admin.GET("/stats", userHandler.GetStats)
				admin.GET("/users", userHandler.GetAllUsers)
				admin.GET("/users/:id", userHandler.GetUser)
				admin.POST("/users/:id/ban", userHandler.BanUser)
				admin.POST("/users/:id/unban", userHandler.UnbanUser)
				admin.PUT("/users/:id/role", userHandler.UpdateUserRole)

				admin.POST("/announcements", notificationHandler.BroadcastAnnouncement)

				admin.POST("/politicians", politicianHandler.CreatePolitician)
				admin.PUT("/politicians/:id", politicianHandler.UpdatePolitician)
				admin.DELETE("/politicians/:id", politicianHandler.DeletePolitician)
				admin.POST("/politicians/:id/portrait", politicianHandler.UploadPortrait)
				admin.POST("/politicians/:id/evaluations", politicianHandler.AddEvaluation)
			}
		}
	}

	// WebSocket route
	r.GET("/ws", func(c *gin.Context) {
		websocket.ServeWS(wsHub, cfg.JWTSecret).ServeHTTP(c.Writer, c.Request)
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "ok",
			"ws_clients": wsHub.GetTotalClientCount(),
		})
	})

	return r
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = "host=" + cfg.PostgresHost +
			" port=" + cfg.PostgresPort +
			" user=" + cfg.PostgresUser +
			" password=" + cfg.PostgresPassword +
			" dbname=" + cfg.PostgresDB +
			" sslmode=" + cfg.PostgresSSLMode
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// initRabbitMQWithRetry attempts to connect to RabbitMQ with exponential backoff retry
func initRabbitMQWithRetry(cfg *config.Config) *util.RabbitMQClient {
	maxRetries := 10
	initialDelay := 2 * time.Second
	maxDelay := 30 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		rabbitMQ, err := util.NewRabbitMQClient(cfg)
		if err == nil {
			log.Printf("RabbitMQ connected successfully on attempt %d", attempt)
			return rabbitMQ
		}

		if attempt < maxRetries {
			delay := initialDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxDelay {
				delay = maxDelay
			}

			log.Printf("Failed to connect to RabbitMQ (attempt %d/%d): %v. Retrying in %v...", attempt, maxRetries, err, delay)
			time.Sleep(delay)
		} else {
			log.Printf("Warning: Failed to connect to RabbitMQ after %d attempts: %v. Async workers will be disabled.", maxRetries, err)
		}
	}

	return nil
}

// initRedisWithRetry attempts to connect to Redis with exponential backoff retry
func initRedisWithRetry(cfg *config.Config) *util.RedisClient {
	maxRetries := 10
	initialDelay := 2 * time.Second
	maxDelay := 30 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		redisClient, err := util.NewRedisClient(cfg)
		if err == nil {
			log.Printf("Redis connected successfully on attempt %d", attempt)
			return redisClient
		}

		if attempt < maxRetries {
			delay := initialDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxDelay {
				delay = maxDelay
			}

			log.Printf("Failed to connect to Redis (attempt %d/%d): %v. Retrying in %v...", attempt, maxRetries, err, delay)
			time.Sleep(delay)
		} else {
			log.Printf("Warning: Failed to connect to Redis after %d attempts: %v. Caching and ranking will be disabled.", maxRetries, err)
		}
	}

	return nil
}

func corsMiddleware(clientURL string) gin.HandlerFunc {
	allowedOrigins := []string{
		clientURL,
		"http://localhost:3000",
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", clientURL)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
