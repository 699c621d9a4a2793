package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/salesbonus/internal/api"
	"github.com/wonny/salesbonus/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the REST API server.

Runs are stored in PostgreSQL when DATABASE_URL is set, in memory otherwise.
REDIS_ENABLED=true turns on the report cache.

Endpoints:
  GET  /health
  POST /api/analysis             - full run over a posted dataset
  POST /api/analysis/ranking     - ranking stage only
  POST /api/analysis/bonuses     - special bonuses only
  GET  /api/policy               - active bonus policy
  GET  /api/runs                 - stored runs, newest first
  GET  /api/runs/latest
  GET  /api/runs/{id}

Example:
  go run ./cmd/salesbonus api
  go run ./cmd/salesbonus api --port 9090`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default: PORT or 8080)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. Config, logger, stores, runner
	a, err := newApp(ctx, os.Stdout, appOptions{persist: true, cache: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port":   a.cfg.Port,
		"env":    a.cfg.Env,
		"policy": a.runner.Policy().Meta.PolicyID,
	}).Info("Initializing API server")

	// 2. Handlers and router
	analysisHandler := handlers.NewAnalysisHandler(a.runner, a.log)
	runHandler := handlers.NewRunHandler(a.repo, a.log)
	router := api.NewRouter(analysisHandler, runHandler, a.cfg.API, a.log)

	// 3. Serve until SIGINT/SIGTERM
	server := api.New(a.cfg, a.log, router)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	return server.Run(sigCtx)
}
