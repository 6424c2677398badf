package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alexanderramin/itinera/internal/cli/formatter"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/session"
	"github.com/spf13/cobra"
)

const editHelp = `Commands (days are numbered from 1):
  show [DAY]               show the itinerary or one day
  add                      append an unplanned day
  delete DAY               remove a day
  move FROM TO             move a day to another position
  refine DAY REQUEST...    re-plan a day following REQUEST
  lucky DAY                let the model improve a day on its own
  slot DAY SLOT REQUEST... re-plan one time slot (morning, lunch, afternoon, dinner, additional)
  insert [AFTER]           plan a new day after day AFTER (default: the middle)
  generate                 add a fresh proposal and switch to it
  proposals                list proposals
  select PROPOSAL          switch the active proposal
  confirm | reopen         freeze or unfreeze the itinerary
  status                   show the save status
  save                     save now
  quit                     save and leave`

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a journey interactively with autosave",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			j, err := loadJourney(cmd, app, args[0])
			if err != nil {
				return err
			}

			sess := session.New(j, session.Deps{
				Proposals: app.Proposals,
				Save: func(ctx context.Context, j *domain.Journey) error {
					_, err := app.Journeys.Save(ctx, j)
					return err
				},
				Identity: app.Identity,
				Autosave: app.Autosave,
				Logger:   app.logger().Named("edit"),
			})

			r := &editLoop{app: app, sess: sess, in: newLineReader(cmd.InOrStdin()), out: cmd.OutOrStdout()}
			runErr := r.run(ctx)
			if err := sess.Close(ctx); err != nil {
				return errors.Join(runErr, fmt.Errorf("saving %s: %w", j.Name, err))
			}
			return runErr
		},
	}
}

type editLoop struct {
	app  *App
	sess *session.EditSession
	in   *lineReader
	out  io.Writer
}

func (r *editLoop) run(ctx context.Context) error {
	fmt.Fprint(r.out, formatter.FormatJourney(r.sess.Journey(), r.app.now()))
	fmt.Fprintln(r.out, formatter.Dim("Type 'help' for commands."))

	for {
		fmt.Fprint(r.out, r.prompt())
		line, err := r.in.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		quit, err := r.exec(ctx, fields[0], fields[1:])
		if err != nil {
			fmt.Fprintln(r.out, formatter.StyleRed.Render("Error: "+describeEditError(err)))
		}
		if quit {
			return nil
		}
	}
}

func (r *editLoop) prompt() string {
	status, err := r.sess.SaveStatus()
	return fmt.Sprintf("%s %s > ", formatter.StyleHeader.Render(r.sess.Journey().Name), formatter.SaveIndicator(status, err))
}

func (r *editLoop) exec(ctx context.Context, name string, args []string) (quit bool, err error) {
	switch strings.ToLower(name) {
	case "help", "?":
		fmt.Fprintln(r.out, editHelp)
	case "show":
		return false, r.show(args)
	case "add":
		r.report(r.sess.AddDay(), "Added an unplanned day.", "Cannot add days to a confirmed journey.")
	case "delete", "rm":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: delete DAY")
		}
		id, err := r.dayID(args[0])
		if err != nil {
			return false, err
		}
		r.report(r.sess.DeleteDay(id), "Deleted the day.", "That day cannot be deleted (first or last day of a road trip, the only day, or the journey is confirmed).")
	case "move", "mv":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: move FROM TO")
		}
		from, errFrom := strconv.Atoi(args[0])
		to, errTo := strconv.Atoi(args[1])
		if errFrom != nil || errTo != nil {
			return false, fmt.Errorf("usage: move FROM TO (day numbers)")
		}
		r.report(r.sess.ReorderDay(from-1, to-1), fmt.Sprintf("Moved day %d to position %d.", from, to), "That move is not allowed.")
	case "refine":
		if len(args) < 2 {
			return false, fmt.Errorf("usage: refine DAY REQUEST")
		}
		return false, r.refine(ctx, args[0], strings.Join(args[1:], " "))
	case "lucky":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: lucky DAY")
		}
		return false, r.lucky(ctx, args[0])
	case "slot":
		if len(args) < 3 {
			return false, fmt.Errorf("usage: slot DAY SLOT REQUEST")
		}
		return false, r.slot(ctx, args[0], args[1], strings.Join(args[2:], " "))
	case "insert":
		return false, r.insert(ctx, args)
	case "generate":
		return false, r.generate(ctx)
	case "proposals":
		fmt.Fprint(r.out, formatter.FormatProposals(r.sess.Journey()))
	case "select":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: select PROPOSAL")
		}
		pid, err := resolveProposalRef(r.sess.Journey(), args[0])
		if err != nil {
			return false, err
		}
		r.report(r.sess.SelectProposal(pid), "Switched proposal.", "Already on that proposal, or the journey is confirmed.")
	case "confirm":
		r.report(r.sess.Confirm(), "Itinerary confirmed.", "Nothing to confirm.")
	case "reopen":
		r.report(r.sess.Reopen(), "Reopened for planning.", "The journey is not confirmed.")
	case "status":
		status, serr := r.sess.SaveStatus()
		fmt.Fprintln(r.out, formatter.SaveIndicator(status, serr))
	case "save":
		if err := r.sess.Flush(ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, formatter.StyleGreen.Render("Saved."))
	case "quit", "exit", "q":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (type 'help')", name)
	}
	return false, nil
}

func (r *editLoop) report(changed bool, done, refused string) {
	if changed {
		fmt.Fprintln(r.out, formatter.StyleGreen.Render(done))
		return
	}
	fmt.Fprintln(r.out, formatter.Dim(refused))
}

func (r *editLoop) days() []domain.Day {
	j := r.sess.Journey()
	if p, ok := j.Itinerary(); ok {
		return p.Days
	}
	return nil
}

func (r *editLoop) dayID(ref string) (string, error) {
	days := r.days()
	ids := make([]string, len(days))
	for i, d := range days {
		ids[i] = d.ID
	}
	return resolveRef("day", ids, ref)
}

func (r *editLoop) showDay(id string) {
	for _, d := range r.days() {
		if d.ID == id {
			fmt.Fprint(r.out, formatter.FormatDay(d))
			return
		}
	}
}

func (r *editLoop) show(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(r.out, formatter.FormatJourney(r.sess.Journey(), r.app.now()))
		return nil
	}
	id, err := r.dayID(args[0])
	if err != nil {
		return err
	}
	r.showDay(id)
	return nil
}

// oracle runs fn behind a spinner. The model must be configured.
func (r *editLoop) oracle(message string, fn func() error) error {
	if err := requireLLM(r.app); err != nil {
		return err
	}
	stop := formatter.StartSpinner(r.out, message, r.app.interactive())
	err := fn()
	stop()
	return err
}

func (r *editLoop) refine(ctx context.Context, ref, request string) error {
	id, err := r.dayID(ref)
	if err != nil {
		return err
	}
	if err := r.oracle("Refining the day...", func() error { return r.sess.RefineDay(ctx, id, request) }); err != nil {
		return err
	}
	r.showDay(id)
	return nil
}

func (r *editLoop) lucky(ctx context.Context, ref string) error {
	id, err := r.dayID(ref)
	if err != nil {
		return err
	}
	if err := r.oracle("Feeling lucky...", func() error { return r.sess.FeelLucky(ctx, id) }); err != nil {
		return err
	}
	r.showDay(id)
	return nil
}

func (r *editLoop) slot(ctx context.Context, ref, slotName, request string) error {
	id, err := r.dayID(ref)
	if err != nil {
		return err
	}
	slot, ok := domain.ParseTimeSlot(slotName)
	if !ok {
		return fmt.Errorf("unknown slot %q", slotName)
	}
	if err := r.oracle("Refining "+strings.ToLower(string(slot))+"...", func() error {
		return r.sess.RefineSlot(ctx, id, slot, request)
	}); err != nil {
		return err
	}
	r.showDay(id)
	return nil
}

func (r *editLoop) insert(ctx context.Context, args []string) error {
	after := -1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("usage: insert [AFTER] (a day number)")
		}
		after = n - 1
	}
	var day domain.Day
	err := r.oracle("Planning a new day...", func() error {
		var err error
		day, err = r.sess.InsertDay(ctx, after)
		return err
	})
	if err != nil {
		return err
	}
	r.showDay(day.ID)
	return nil
}

func (r *editLoop) generate(ctx context.Context) error {
	if err := r.oracle("Planning your trip...", func() error { return r.sess.Generate(ctx) }); err != nil {
		return err
	}
	fmt.Fprint(r.out, formatter.FormatJourney(r.sess.Journey(), r.app.now()))
	return nil
}

func describeEditError(err error) string {
	switch {
	case errors.Is(err, session.ErrStaleResult):
		return "the itinerary changed while the model was working; the result was discarded"
	default:
		return withRetryHint(err).Error()
	}
}
