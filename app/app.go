// app/app.go - Process lifecycle
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hangeul/config"
	"hangeul/middleware"
	"hangeul/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	conf     *config.Config
	log      zerolog.Logger
	http     *fiber.App
	sweeper  *services.StreakSweeper
	limiters *middleware.Limiters
}

func New(conf *config.Config, log zerolog.Logger, http *fiber.App, sweeper *services.StreakSweeper, limiters *middleware.Limiters) *App {
	return &App{
		conf:     conf,
		log:      log,
		http:     http,
		sweeper:  sweeper,
		limiters: limiters,
	}
}

// HTTP exposes the Fiber application, mainly for tests.
func (a *App) HTTP() *fiber.App {
	return a.http
}

// Run serves HTTP until SIGINT/SIGTERM or ctx is done, then shuts down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.conf.RateLimit.Enabled {
		a.limiters.StartPruning(ctx)
	}
	if a.conf.Sweep.Enabled {
		if err := a.sweeper.Start(); err != nil {
			return err
		}
		defer a.sweeper.Stop()
	}

	serverErr := make(chan error, 1)
	go func() {
		addr := ":" + a.conf.Server.Port
		a.log.Info().Str("addr", addr).Str("environment", a.conf.Server.Environment).Msg("server listening")
		if err := a.http.Listen(addr); err != nil {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.http.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info().Msg("server stopped")
	return nil
}
