package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"genexplorer/internal/config"
	"genexplorer/internal/container"
	"genexplorer/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// sessionMaxAge bounds how long an idle explorer session keeps its results
const sessionMaxAge = 2 * time.Hour

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appConfig); err != nil {
		log.Printf("genexplorer: %v", err)
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is done or the server fails. Resources are released
// on every return path.
func run(ctx context.Context, appConfig *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c, err := container.New(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	defer c.Close()

	if err := c.InitSources(ctx); err != nil {
		c.Logger.Error("[main] %v", err)
		return err
	}
	if err := c.StartWatcher(ctx); err != nil {
		c.Logger.Warn("[main] header cache will rely on modification times: %v", err)
	}

	server, err := ui.NewServer(c.Explorer, ui.ServerOptions{Metrics: c.Metrics, Logger: c.Logger})
	if err != nil {
		c.Logger.Error("[main] failed to create server: %v", err)
		return err
	}

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.Explorer.Sessions().CleanupOldSessions(sessionMaxAge); n > 0 {
					c.Logger.Info("[main] dropped %d idle sessions", n)
				}
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(":" + appConfig.Server.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			c.Logger.Error("[main] server stopped: %v", err)
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
		c.Logger.Info("[main] shutting down")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			c.Logger.Error("[main] shutdown: %v", err)
			return err
		}
		return nil
	}
}
