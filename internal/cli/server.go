package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classroom-quiz-service/internal/config"
	"classroom-quiz-service/internal/logging"
	"classroom-quiz-service/internal/schedule"
	transport "classroom-quiz-service/internal/transport/http"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := listenPort(portFlag, cfg)

	w, err := wire(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer w.close()

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	runner := schedule.NewCronRunner(log)
	runner.Start()
	defer runner.Stop()
	sweeper := w.services.Pings.StartSweeper(runCtx, runner)
	defer sweeper.Stop()

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewServer(w.services, log).Routes(cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// listenPort picks the --port flag (or $PORT), then server.port, then 8080.
func listenPort(flag string, cfg config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.Server.Port != "" {
		return cfg.Server.Port
	}
	return "8080"
}
