package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alexanderramin/itinera/internal/cli/formatter"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/export"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const zoneLookupTimeout = 10 * time.Second

func newExportCmd(app *App) *cobra.Command {
	var format, out, tz string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Export the itinerary as markdown, YAML or an iCalendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := loadJourney(cmd, app, args[0])
			if err != nil {
				return err
			}

			var doc string
			switch strings.ToLower(format) {
			case "md", "markdown":
				doc, err = export.Markdown(j)
			case "yaml", "yml":
				doc, err = export.YAML(j)
			case "ics", "ical":
				var loc *time.Location
				if loc, err = exportZone(cmd.Context(), app, j, tz); err != nil {
					return err
				}
				doc, err = export.ICS(j, app.now(), loc)
			default:
				return fmt.Errorf("unknown format %q (use md, yaml or ics)", format)
			}
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				fmt.Fprint(cmd.OutOrStdout(), doc)
				return nil
			}
			if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s %s\n", out, formatter.Dim("("+j.Name+")"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "md", "Output format (md|yaml|ics)")
	cmd.Flags().StringVar(&tz, "tz", "", "Time zone for calendar events, e.g. Europe/Lisbon (default: the destination's)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")

	return cmd
}

// exportZone picks the zone calendar events are placed in: --tz when given,
// else the destination's zone when routing is on. A failed lookup falls back
// to the start date's zone.
func exportZone(ctx context.Context, app *App, j *domain.Journey, tz string) (*time.Location, error) {
	if tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("unknown time zone %q", tz)
		}
		return loc, nil
	}
	if app.Zones == nil || j.Destination == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, zoneLookupTimeout)
	defer cancel()
	loc, err := app.Zones.TimeZone(ctx, j.Destination)
	if err != nil {
		app.logger().Warn("destination time zone lookup failed",
			zap.String("journey_id", j.ID), zap.String("destination", j.Destination), zap.Error(err))
		return nil, nil
	}
	return loc, nil
}
