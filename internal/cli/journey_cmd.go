package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alexanderramin/itinera/internal/cli/formatter"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/planner"
	"github.com/alexanderramin/itinera/internal/service"
	"github.com/spf13/cobra"
)

var errLLMDisabled = errors.New("LLM is disabled: set ITINERA_LLM_ENABLED=true to plan itineraries")

func requireLLM(app *App) error {
	if app.Proposals == nil {
		return errLLMDisabled
	}
	return nil
}

func newJourneyNewCmd(app *App) *cobra.Command {
	in := journeyInput{}
	var interactive, generate bool

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a journey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				if !app.interactive() {
					return fmt.Errorf("--interactive needs a terminal")
				}
				travelers, nights := strconv.Itoa(in.Travelers), strconv.Itoa(in.Nights)
				if err := journeyForm(&in, &travelers, &nights).Run(); err != nil {
					return err
				}
				in.Travelers = parseIntOr(travelers, 1)
				in.Nights = parseIntOr(nights, 3)
			}

			j, err := in.toJourney()
			if err != nil {
				return err
			}
			if err := app.Journeys.Create(cmd.Context(), j, app.Identity); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created journey %s %s\n", formatter.Bold(j.Name), formatter.TruncID(j.ID))

			if generate {
				return runGenerate(cmd, app, j.ID)
			}
			return nil
		},
	}

	cmd.Flags().AddFlagSet(journeyFlagSet(&in))
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill in the journey with a form")
	cmd.Flags().BoolVar(&generate, "generate", false, "Generate a first proposal right away")

	return cmd
}

func newJourneyListCmd(app *App) *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List journeys",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner := ""
			if mine {
				owner = app.Identity.UserID
			}
			journeys, err := app.Journeys.List(cmd.Context(), owner)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatJourneyList(journeys, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "Only journeys owned by the current user")

	return cmd
}

func newJourneyShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a journey and its itinerary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := loadJourney(cmd, app, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatJourney(j, app.now()))
			return nil
		},
	}
}

func newJourneyDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a journey",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := loadJourney(cmd, app, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !yes && !promptYesNoIO(cmd.InOrStdin(), out, fmt.Sprintf("Delete %q? [y/N]: ", j.Name)) {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
			if err := app.Journeys.Delete(cmd.Context(), j.ID); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted journey %s\n", formatter.Bold(j.Name))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newGenerateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "generate ID",
		Short: "Generate a new itinerary proposal",
		Long:  "Generate asks the model for a full itinerary and adds it as the active proposal. Earlier proposals are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveJourneyID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			return runGenerate(cmd, app, id)
		},
	}
}

func runGenerate(cmd *cobra.Command, app *App, id string) error {
	if err := requireLLM(app); err != nil {
		return err
	}
	stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Planning your trip...", app.interactive())
	j, err := app.Journeys.Generate(cmd.Context(), id)
	stop()
	if err != nil {
		return withRetryHint(err)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatJourney(j, app.now()))
	return nil
}

func newConfirmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm ID",
		Short: "Freeze the active proposal as the confirmed itinerary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyAndReport(cmd, app, args[0], planner.Confirm,
				"Confirmed %s.", "Nothing to confirm: %s is already confirmed or has no proposal.")
		},
	}
}

func newReopenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen ID",
		Short: "Return a confirmed journey to planning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyAndReport(cmd, app, args[0], planner.Reopen,
				"Reopened %s for planning.", "%s is not confirmed.")
		},
	}
}

func newSelectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "select ID PROPOSAL",
		Short: "Make a proposal the active one",
		Long:  "PROPOSAL is the proposal number shown by 'show' or a proposal ID prefix.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := loadJourney(cmd, app, args[0])
			if err != nil {
				return err
			}
			pid, err := resolveProposalRef(j, args[1])
			if err != nil {
				return err
			}
			op := func(j *domain.Journey) (*domain.Journey, bool) { return planner.SelectProposal(j, pid) }
			return applyAndReport(cmd, app, j.ID, op,
				"Switched %s to the selected proposal.", "No change: %s is confirmed or already on that proposal.")
		},
	}
}

// applyAndReport runs a planner operation on a stored journey. The
// messages take the journey name.
func applyAndReport(cmd *cobra.Command, app *App, ref string, op service.JourneyOp, changedMsg, unchangedMsg string) error {
	id, err := resolveJourneyID(cmd.Context(), app, ref)
	if err != nil {
		return err
	}
	j, changed, err := app.Journeys.Apply(cmd.Context(), id, op)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !changed {
		fmt.Fprintln(out, formatter.Dim(fmt.Sprintf(unchangedMsg, j.Name)))
		return nil
	}
	fmt.Fprintln(out, formatter.StyleGreen.Render(fmt.Sprintf(changedMsg, j.Name)))
	return nil
}

func loadJourney(cmd *cobra.Command, app *App, ref string) (*domain.Journey, error) {
	id, err := resolveJourneyID(cmd.Context(), app, ref)
	if err != nil {
		return nil, err
	}
	return app.Journeys.GetByID(cmd.Context(), id)
}

// resolveProposalRef accepts a 1-based proposal number or an ID prefix.
func resolveProposalRef(j *domain.Journey, ref string) (string, error) {
	ids := make([]string, len(j.Proposals))
	for i, p := range j.Proposals {
		ids[i] = p.ID
	}
	return resolveRef("proposal", ids, ref)
}

func withRetryHint(err error) error {
	if service.IsRetryable(err) {
		return fmt.Errorf("%w (the model or the store is busy, try again shortly)", err)
	}
	return err
}
