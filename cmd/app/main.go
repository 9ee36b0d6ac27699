package main

import (
	"EmotionAnalyzer/internal/config"
	"EmotionAnalyzer/pkg/log"
	"EmotionAnalyzer/pkg/redis"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	logger := log.NewLogger()

	env, err := config.LoadEnv()
	if err != nil {
		logger.Fatalf("Error loading configuration: %v", err)
	}

	fiberApp := config.NewFiber(logger, env)
	validator := config.NewValidator()

	options := []config.ServerOption{
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithEnv(env),
		config.WithValidator(validator),
	}
	if env.RedisAddress != "" {
		options = append(options, config.WithRedisServer(redis.New(env.RedisAddress, env.RedisPassword, env.RedisDB)))
	}
	options = append(options,
		config.WithDeepFace(),
		config.WithMiddleware(),
		config.WithMetrics(),
		config.WithUtils(),
	)

	server, err := config.NewServer(options...)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	if err := server.Shutdown(10 * time.Second); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
