package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/itinera/internal/cli/formatter"
	"github.com/spf13/cobra"
)

const availabilityTimeout = 5 * time.Second

func newLLMCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llm",
		Short: "Inspect the itinerary model",
	}
	cmd.AddCommand(newLLMStatusCmd(app))
	return cmd
}

func newLLMStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the model configuration and whether it is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.LLMConfig
			out := cmd.OutOrStdout()

			rows := [][]string{
				{"Provider", string(cfg.Provider)},
				{"Model", cfg.Model},
			}
			if cfg.Endpoint != "" {
				rows = append(rows, []string{"Endpoint", cfg.Endpoint})
			}
			if cfg.WebModel != "" {
				rows = append(rows, []string{"Web model", cfg.WebModel})
			}

			state := formatter.StyleDim.Render("○ disabled")
			if cfg.Enabled && app.LLM != nil {
				ctx, cancel := context.WithTimeout(cmd.Context(), availabilityTimeout)
				defer cancel()
				stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Checking the model...", app.interactive())
				ok := app.LLM.Available(ctx)
				stop()
				if ok {
					state = formatter.StyleGreen.Render("● reachable")
				} else {
					state = formatter.StyleRed.Render("✖ unreachable")
				}
			}
			rows = append(rows, []string{"Status", state})

			fmt.Fprint(out, formatter.RenderTable([]string{"SETTING", "VALUE"}, rows))
			return nil
		},
	}
}
