package cli

import (
	"context"
	"time"

	"github.com/alexanderramin/itinera/internal/autosave"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/llm"
	"github.com/alexanderramin/itinera/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ZoneLookup finds the time zone a place lies in.
type ZoneLookup interface {
	TimeZone(ctx context.Context, place string) (*time.Location, error)
}

// App holds the services and settings used by CLI commands.
type App struct {
	Journeys service.JourneyService
	// Proposals is nil when the LLM is disabled.
	Proposals service.ProposalService
	LLM       llm.LLMClient
	LLMConfig llm.LLMConfig
	// Zones is nil when routing is disabled.
	Zones ZoneLookup

	Identity domain.Identity
	Autosave autosave.Options
	Logger   *zap.Logger

	// IsInteractive reports whether stdin is a terminal. Spinners and forms
	// only run when it returns true.
	IsInteractive func() bool
	// Now defaults to time.Now.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) logger() *zap.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return zap.NewNop()
}

// NewRootCmd creates the top-level "itinera" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "itinera",
		Short:         "Plan, refine and confirm travel itineraries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newJourneyNewCmd(app),
		newJourneyListCmd(app),
		newJourneyShowCmd(app),
		newJourneyDeleteCmd(app),
		newGenerateCmd(app),
		newConfirmCmd(app),
		newReopenCmd(app),
		newSelectCmd(app),
		newEditCmd(app),
		newExportCmd(app),
		newLLMCmd(app),
	)

	return root
}
