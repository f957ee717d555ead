package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-program-office/internal/config"
	"github.com/iliyamo/festival-program-office/internal/database"
	"github.com/iliyamo/festival-program-office/internal/handler"
	"github.com/iliyamo/festival-program-office/internal/middleware"
	"github.com/iliyamo/festival-program-office/internal/queue"
	"github.com/iliyamo/festival-program-office/internal/repository"
	"github.com/iliyamo/festival-program-office/internal/router"
	"github.com/iliyamo/festival-program-office/internal/service"
	"github.com/iliyamo/festival-program-office/internal/workflow"
)

func main() {
	// .env is optional; in production everything comes from the environment.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewRefreshTokenRepo(db)
	programs := repository.NewProgramRepo(db)
	screenings := repository.NewScreeningRepo(db)
	auditLog := repository.NewAuditRepo(db)

	eval := workflow.Evaluator{OpenScreeningVisibility: cfg.OpenScreeningVisibility}

	programSvc := &service.ProgramService{
		Programs:   programs,
		Screenings: screenings,
		Users:      users,
		Audit:      auditLog,
		Eval:       eval,
	}
	screeningSvc := &service.ScreeningService{
		Programs:         programs,
		Screenings:       screenings,
		Users:            users,
		Audit:            auditLog,
		Eval:             eval,
		PublishScheduled: queue.PublishScreeningScheduled,
	}

	authH := handler.NewAuthHandler(cfg, users, tokens)
	programH := handler.NewProgramHandler(programSvc)
	screeningH := handler.NewScreeningHandler(screeningSvc)
	adminH := handler.NewAdminHandler(users, tokens, auditLog)

	e := echo.New()
	e.HideBanner = true

	// Redis-backed rate limiter; a missing Redis disables it rather than
	// blocking startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPrograms(e, programH, screeningH, cfg.JWTSecret)
	router.RegisterScreenings(e, screeningH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// Background consumer appending scheduled-screening events to the log
	// file.  Runs its own reconnect loop for the life of the process.
	go func() {
		if err := queue.StartScheduledConsumer(); err != nil {
			log.Printf("screening-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
