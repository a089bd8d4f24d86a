package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"engagement-insights/config"
	"engagement-insights/flowstub"
	"engagement-insights/metrics"
	"engagement-insights/services"
	"engagement-insights/storage"
	"engagement-insights/ui"
	"engagement-insights/utils"
	"engagement-insights/workflow"
)

var timesFlag int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Serve clicks in the terminal; each line read from stdin answers one prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		deps, cleanup, err := buildDeps(ctx, cfg, logger, nil)
		if err != nil {
			return err
		}
		defer cleanup()

		out := cmd.OutOrStdout()
		prompter := ui.NewLinePrompter(cmd.InOrStdin(), out)
		ctrl := ui.NewController(deps, ui.Surface{
			Prompter: prompter,
			Alerter:  ui.NewWriterAlerter(out),
			Region:   ui.NewTerminalRegion(out),
		})

		logger.Info("=== Engagement insights (source: %s, analysis: %s) ===", cfg.EngagementSource, cfg.AnalysisMode)
		if timesFlag > 0 {
			return ignoreCancel(ctrl.Run(ctx, ui.Clicks(timesFlag)))
		}
		return ignoreCancel(runUntilEOF(ctx, ctrl, prompter))
	},
}

// runUntilEOF clicks repeatedly until the prompter runs out of input.
// A failed read ends the loop with that error.
func runUntilEOF(ctx context.Context, ctrl *ui.Controller, p *ui.LinePrompter) error {
	for !p.Exhausted() {
		if _, err := ctrl.HandleClick(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	if err := p.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the insights page over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m := metrics.New()
		deps, cleanup, err := buildDeps(ctx, cfg, logger, m)
		if err != nil {
			return err
		}
		defer cleanup()

		return serveHTTP(ctx, ":"+cfg.HTTPPort, ui.NewRouter(deps), logger.With("service", "web"))
	},
}

var flowstubCmd = &cobra.Command{
	Use:   "flowstub",
	Short: "Serve a local stand-in for the remote workflow API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stub := flowstub.New(cfg.LangflowToken, logger)
		return serveHTTP(ctx, ":"+cfg.HTTPPort, stub.Router(), logger.With("service", "flowstub"))
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo engagement records into PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ps, err := storage.NewPostgresSource(cmd.Context(), cfg.DSN())
		if err != nil {
			return err
		}
		defer ps.Close()

		records := storage.MockRecords()
		if err := ps.Seed(cmd.Context(), records); err != nil {
			return err
		}
		logger.Info("Seeded %d engagement records", len(records))
		return nil
	},
}

// buildDeps selects the engagement source and analyzer named by cfg.
func buildDeps(ctx context.Context, cfg *config.Config, logger *utils.Logger, m *metrics.Metrics) (ui.Deps, func(), error) {
	source, err := newSource(ctx, cfg, logger)
	if err != nil {
		return ui.Deps{}, nil, err
	}
	analyzer, err := newAnalyzer(cfg, logger, m)
	if err != nil {
		source.Close()
		return ui.Deps{}, nil, err
	}

	cleanup := func() {
		if err := source.Close(); err != nil {
			logger.Warn("close source: %v", err)
		}
	}
	return ui.Deps{
		Source:   source,
		Analyzer: analyzer,
		Logger:   logger,
		Gate:     utils.NewRunGate(),
		Metrics:  m,
	}, cleanup, nil
}

func newSource(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.EngagementSource, error) {
	switch cfg.EngagementSource {
	case config.SourceMock:
		return storage.NewMockSource(cfg.MockDelay), nil
	case config.SourceCSV:
		return storage.NewCSVSource(cfg.CSVPath, services.NewCleaner(logger))
	case config.SourcePostgres:
		return storage.NewPostgresSource(ctx, cfg.DSN())
	default:
		return nil, fmt.Errorf("unknown engagement source %q", cfg.EngagementSource)
	}
}

func newAnalyzer(cfg *config.Config, logger *utils.Logger, m *metrics.Metrics) (ui.Analyzer, error) {
	switch cfg.AnalysisMode {
	case config.AnalysisLocal:
		return services.NewInsightService(logger), nil
	case config.AnalysisRemote:
		if !cfg.RemoteReady() {
			return nil, errors.New("remote analysis needs LANGFLOW_BASE_URL, LANGFLOW_TOKEN, LANGFLOW_FLOW_ID and LANGFLOW_TENANT_ID")
		}
		var tweaks map[string]any
		if cfg.LangflowTweaks != "" {
			if err := json.Unmarshal([]byte(cfg.LangflowTweaks), &tweaks); err != nil {
				return nil, fmt.Errorf("parse LANGFLOW_TWEAKS: %w", err)
			}
		}
		client := workflow.NewClient(cfg.LangflowBaseURL, cfg.LangflowToken,
			workflow.WithTimeout(cfg.WorkflowTimeout),
			workflow.WithLogger(logger))
		return services.NewRemoteAnalyzer(client, services.RemoteConfig{
			FlowID:   cfg.LangflowFlowID,
			TenantID: cfg.LangflowTenantID,
			Stream:   cfg.LangflowStream,
			Tweaks:   tweaks,
		}, logger, m), nil
	default:
		return nil, fmt.Errorf("unknown analysis mode %q", cfg.AnalysisMode)
	}
}

// serveHTTP runs handler on addr until ctx is done, then shuts down gracefully.
func serveHTTP(ctx context.Context, addr string, handler http.Handler, logger *utils.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
