package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minijudge/internal/api"
	"minijudge/internal/app/judge"
	"minijudge/internal/app/service"
	"minijudge/internal/common/security"
	"minijudge/internal/domain/repository"
	"minijudge/internal/platform/cache"
	"minijudge/internal/platform/config"
	"minijudge/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis (leaderboard cache)
	cache.ConnectRedis()
	defer cache.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	statRepo := repository.NewPgStatRepository(database.DB)
	solutionRepo := repository.NewPgSolutionRepository(database.DB)

	// 6. Initialize Judging Engine
	runner := judge.NewProcessRunner(
		config.AppConfig.JudgeInterpreter,
		config.AppConfig.JudgeFileExtension,
		time.Duration(config.AppConfig.JudgeTimeLimitMs)*time.Millisecond,
	)
	evaluator := judge.NewEvaluator(runner, config.AppConfig.JudgeWorkers)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo)
	problemService := service.NewProblemService(problemRepo, database.DB)
	leaderboardService := service.NewLeaderboardService(
		statRepo, problemRepo, cache.RDB,
		time.Duration(config.AppConfig.LeaderboardCacheTTLSeconds)*time.Second,
	)
	submissionService := service.NewSubmissionService(
		submissionRepo, problemRepo, statRepo, solutionRepo,
		evaluator, leaderboardService, database.DB,
	)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, problemService, submissionService, leaderboardService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		// Submissions are judged inside the request, so writes must wait
		// out a full evaluation (N test cases * per-test limit).
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
