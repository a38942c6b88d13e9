package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dotcommander/bedtime/internal/agent"
	"github.com/dotcommander/bedtime/internal/config"
	"github.com/dotcommander/bedtime/internal/console"
	"github.com/dotcommander/bedtime/internal/core"
	"github.com/dotcommander/bedtime/internal/metrics"
	"github.com/dotcommander/bedtime/internal/phase/bedtime"
)

type options struct {
	configPath string
	request    string
	offline    bool
	noRevise   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	renderer := console.NewRenderer(0)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, renderer)
	code := report(err, renderer, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// report prints the outcome of run and returns the process exit code. An
// interrupt ends the session normally.
func report(err error, renderer *console.Renderer, stdout, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stdout, "\nGoodbye!")
		return 0
	}

	fmt.Fprintln(stderr, renderer.Error(err))
	if core.IsConfigError(err) && errors.Is(err, core.ErrNoAPIKey) {
		fmt.Fprintln(stderr, "Set OPENAI_API_KEY in your environment or .env file, or run with -offline.")
	}
	return 1
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("bedtime", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to config.yaml")
	fs.StringVar(&opts.request, "request", "", "story request; skips the prompt")
	fs.BoolVar(&opts.offline, "offline", false, "use the built-in offline generator")
	fs.BoolVar(&opts.noRevise, "no-revise", false, "skip the revision loop")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, renderer *console.Renderer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.LoadOptions{Path: opts.configPath, Offline: opts.offline})
	if err != nil {
		return err
	}

	logger := cfg.Logging.NewLogger(stderr)
	slog.SetDefault(logger)

	rec := metrics.New()
	if cfg.Metrics.Addr != "" {
		shutdown := serveMetrics(cfg.Metrics.Addr, rec, logger)
		defer shutdown()
	}

	var gen agent.Generator
	if opts.offline {
		logger.Info("running offline")
		gen = agent.NewMockClient()
	} else {
		client := agent.NewClient(cfg.AI.APIKey,
			agent.WithAPIConfig(cfg.AI.BaseURL, cfg.AI.Model),
			agent.WithTimeout(time.Duration(cfg.AI.Timeout)*time.Second),
			agent.WithRateLimit(cfg.Limits.RateLimit.RequestsPerMinute, cfg.Limits.RateLimit.BurstSize),
			agent.WithLogger(logger))
		logger.Info("using generation service", "model", client.Model(), "base_url", cfg.AI.BaseURL)
		gen = client
	}

	pipeline, err := buildPipeline(ctx, cfg, gen, rec, logger, func(t core.Transition) {
		if line := renderer.Progress(t); line != "" {
			fmt.Fprintln(stdout, line)
		}
	})
	if err != nil {
		return err
	}

	s := &session{
		pipeline:  pipeline,
		renderer:  renderer,
		prompter:  console.NewPrompter(stdin, stdout),
		out:      stdout,
		request:  opts.request,
		noRevise: opts.noRevise,
	}
	return s.run(ctx)
}

func buildPipeline(ctx context.Context, cfg *config.Config, gen agent.Generator, rec *metrics.Recorder, logger *slog.Logger, progress core.Observer) (*core.Pipeline, error) {
	prompts, err := bedtime.LoadPrompts(ctx, agent.NewPromptCache(), cfg.Paths.PromptsDir)
	if err != nil {
		return nil, err
	}

	gw := agent.NewGateway(gen, agent.WithMetrics(rec), agent.WithGatewayLogger(logger))
	settings := cfg.Generation

	stages := core.Stages{
		Analyzer:  bedtime.NewAnalyzer(gw, prompts, bedtime.Params{MaxTokens: settings.MaxTokens.Analysis, Temperature: settings.Temperatures.Analysis}),
		Planner:   bedtime.NewPlanner(gw, prompts, bedtime.Params{MaxTokens: settings.MaxTokens.Planning, Temperature: settings.Temperatures.Planning}),
		Drafter:   bedtime.NewDrafter(gw, prompts, bedtime.Params{MaxTokens: settings.MaxTokens.Drafting, Temperature: settings.Temperatures.Drafting}),
		Evaluator: bedtime.NewEvaluator(gw, prompts, bedtime.Params{MaxTokens: settings.MaxTokens.Evaluation, Temperature: settings.Temperatures.Evaluation}),
		Refiner:   bedtime.NewRefiner(gw, prompts, bedtime.Params{MaxTokens: settings.MaxTokens.Refinement, Temperature: settings.Temperatures.Refinement}),
		Feedback:  bedtime.NewFeedbackApplier(gw, prompts, bedtime.Params{MaxTokens: settings.MaxTokens.Refinement, Temperature: settings.Temperatures.Refinement}),
	}

	return core.New(stages,
		core.RefinementConfig{
			MaxIterations: settings.MaxRefinements,
			Threshold:     settings.QualityThreshold,
		},
		core.WithLogger(logger),
		core.WithMetrics(rec),
		core.WithProgress(progress))
}

func serveMetrics(addr string, rec *metrics.Recorder, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
