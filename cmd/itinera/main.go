package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/itinera/internal/autosave"
	"github.com/alexanderramin/itinera/internal/cli"
	"github.com/alexanderramin/itinera/internal/config"
	"github.com/alexanderramin/itinera/internal/db"
	"github.com/alexanderramin/itinera/internal/llm"
	"github.com/alexanderramin/itinera/internal/logging"
	"github.com/alexanderramin/itinera/internal/repository"
	"github.com/alexanderramin/itinera/internal/routing"
	"github.com/alexanderramin/itinera/internal/service"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logging.Sync(log)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	var journeys repository.JourneyRepo = repository.NewSQLiteJourneyRepo(database, db.NewSQLiteUnitOfWork(database))
	if cfg.SaveRPS > 0 {
		journeys = repository.NewRateLimitedJourneyRepo(journeys, cfg.SaveRPS, cfg.SaveBurst)
	}

	observer := service.NewLogUseCaseObserver(log.Named("service"))

	app := &cli.App{
		LLMConfig: cfg.LLM,
		Identity:  cfg.Identity,
		Autosave: autosave.Options{
			Delay:      cfg.AutosaveDelay,
			RetryDelay: cfg.RetryDelay,
			Logger:     log.Named("autosave"),
		},
		Logger: log,
	}

	// Detect interactive terminal for spinners and forms.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	var router *routing.Client
	if cfg.RoutingEnabled {
		router, err = routing.NewClient(cfg.Routing, log.Named("routing"))
		if err != nil {
			return fmt.Errorf("configuring routing: %w", err)
		}
		app.Zones = router
	}

	// Wire the model-backed services only when the LLM is enabled.
	var proposals service.ProposalService
	if cfg.LLM.Enabled {
		client, err := llm.NewClient(ctx, cfg.LLM, llmObserver(cfg, log))
		if err != nil {
			return fmt.Errorf("configuring LLM: %w", err)
		}
		opts := service.ProposalOptions{Logger: log.Named("proposals"), UseWebContext: cfg.WebContext}
		if router != nil {
			opts.Router = router
		}
		proposals = service.NewProposalService(client, opts, observer)
		app.LLM = client
		app.Proposals = proposals
	}
	app.Journeys = service.NewJourneyService(journeys, proposals, observer)

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// llmObserver logs model calls when ITINERA_LLM_LOG_CALLS is set, even if
// the general log mode is off.
func llmObserver(cfg *config.Config, log *zap.Logger) llm.Observer {
	if !cfg.LLM.LogCalls {
		return llm.NoopObserver{}
	}
	if cfg.LogMode == "" || cfg.LogMode == "off" || cfg.LogMode == "none" {
		if dev, err := logging.New("dev"); err == nil {
			log = dev
		}
	}
	return llm.NewLogObserver(log.Named("llm"))
}
