package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bnema/chatfs/internal/adapters/render/chatview"
	"github.com/bnema/chatfs/internal/domain"
)

func newSendCmd(app *app) *cobra.Command {
	var rootDir string
	var apply bool
	var plain bool

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send one message and print the outcome",
		Long:  "send runs a single conversational turn against the workspace. Mutating commands stage a proposal; pass --apply to confirm it in the same run, otherwise the proposal is discarded before exit.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, app, rootDir, strings.Join(args, " "), apply, plain)
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", app.cfg.GetString("root"), "Workspace root directory")
	cmd.Flags().BoolVar(&apply, "apply", false, "Confirm staged operations instead of discarding them")
	cmd.Flags().BoolVar(&plain, "plain", false, "Skip the progress spinner")

	return cmd
}

func runSend(cmd *cobra.Command, app *app, rootDir, message string, apply bool, plain bool) error {
	o, err := app.newSession(rootDir)
	if err != nil {
		return err
	}
	startedAt := app.now()

	var events []domain.Event
	turn := func(ctx context.Context) error {
		events = o.HandleMessage(ctx, message)
		return nil
	}

	if plain {
		if err := turn(cmd.Context()); err != nil {
			return err
		}
	} else {
		if err := runSendSpinner(cmd.Context(), cmd.ErrOrStderr(), turn); err != nil {
			return err
		}
	}

	// A one-shot invocation cannot answer a later confirmation prompt, so
	// staged proposals either apply now or are dropped before exit.
	staged := o.PendingIDs()
	for _, id := range staged {
		if apply {
			events = append(events, o.Confirm(cmd.Context(), id)...)
		} else {
			events = append(events, o.Discard(id)...)
		}
	}

	rendered, err := chatview.Render(events)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
		return err
	}

	if !apply && len(staged) > 0 {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "staged operation was discarded; re-run with --apply to confirm it")
	}

	return app.archiveSession(cmd.Context(), o, uuid.NewString(), startedAt)
}
