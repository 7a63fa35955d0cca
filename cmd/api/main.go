package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quizhive/internal/adapter"
	"quizhive/internal/cache"
	"quizhive/internal/config"
	"quizhive/internal/database"
	"quizhive/internal/domain"
	"quizhive/internal/handler"
	"quizhive/internal/logger"
	"quizhive/internal/middleware"
	"quizhive/internal/repository"
	"quizhive/internal/service"
	"quizhive/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Repositories
	userRepository := repository.NewSQLXUserRepository(db)
	quizRepository := repository.NewSQLXQuizRepository(db)
	questionRepository := repository.NewSQLXQuestionRepository(db)
	attemptRepository := repository.NewSQLXAttemptRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Redis is optional: without it the stats cache is simply off.
	var statsCache domain.Cache
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Warn("Redis unavailable, continuing without stats cache", zap.Error(err))
	} else {
		statsCache = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("RedisCacheAdapter initialized")
	}

	// Services
	authService, err := service.NewAuthService(userRepository, cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	userService := service.NewUserService(userRepository)
	quizService := service.NewQuizService(quizRepository, statsCache)
	questionService := service.NewQuestionService(quizRepository, questionRepository, txManager)
	attemptService := service.NewAttemptService(quizRepository, questionRepository, attemptRepository, txManager, quizService)

	// Handlers
	validator := validation.NewValidator()
	authHandler := handler.NewAuthHandler(authService, validator)
	userHandler := handler.NewUserHandler(userService, attemptService)
	quizHandler := handler.NewQuizHandler(quizService)
	questionHandler := handler.NewQuestionHandler(questionService)
	attemptHandler := handler.NewAttemptHandler(attemptService, validator)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	apiGroup := app.Group("/api")
	protected := middleware.Protected(authService)

	// Auth and user routes
	apiGroup.Post("/users/register", authHandler.Register)
	apiGroup.Post("/auth/login", authHandler.Login)
	apiGroup.Get("/users/me", protected, userHandler.GetMyProfile)
	apiGroup.Get("/users/me/attempts", protected, userHandler.ListMyAttempts)

	// Quiz routes. The static segments must register before /quizzes/:id.
	quizGroup := apiGroup.Group("/quizzes")
	quizGroup.Post("/", protected, quizHandler.CreateQuiz)
	quizGroup.Get("/", quizHandler.ListQuizzes)
	quizGroup.Get("/sort/average_score", quizHandler.ListByAverageScore)
	quizGroup.Get("/title/:title", quizHandler.SearchByTitle)
	quizGroup.Get("/difficulty/:difficulty", quizHandler.FilterByDifficulty)
	quizGroup.Get("/category/:category", quizHandler.FilterByCategory)
	quizGroup.Get("/:quizId/stats", quizHandler.GetQuizStats)
	quizGroup.Get("/:id", quizHandler.GetQuiz)
	quizGroup.Put("/:id", protected, quizHandler.UpdateQuiz)
	quizGroup.Delete("/:id", protected, quizHandler.DeleteQuiz)

	// Question and answer authoring routes
	quizGroup.Post("/:quizId/questions", protected, questionHandler.CreateQuestion)
	quizGroup.Get("/:quizId/questions", questionHandler.ListQuestions)
	apiGroup.Put("/questions/:questionId", protected, questionHandler.UpdateQuestion)
	apiGroup.Delete("/questions/:questionId", protected, questionHandler.DeleteQuestion)
	apiGroup.Post("/questions/:questionId/answers", protected, questionHandler.CreateAnswer)
	apiGroup.Get("/questions/:questionId/answers", protected, questionHandler.ListAnswers)
	apiGroup.Put("/answers/:answerId/correct", protected, questionHandler.SetAnswerCorrect)
	apiGroup.Put("/answers/:answerId", protected, questionHandler.UpdateAnswer)
	apiGroup.Delete("/answers/:answerId", protected, questionHandler.DeleteAnswer)

	// Attempt lifecycle routes (all protected)
	attemptGroup := apiGroup.Group("/attempts", protected)
	attemptGroup.Post("/", attemptHandler.StartAttempt)
	attemptGroup.Post("/:id/answer", attemptHandler.RecordAnswer)
	attemptGroup.Post("/:id/submit", attemptHandler.SubmitAttempt)
	attemptGroup.Get("/:id", attemptHandler.GetAttemptDetail)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
