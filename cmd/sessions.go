package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newSessionsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect archived chat sessions",
	}

	cmd.AddCommand(
		newSessionsListCmd(app),
		newSessionsShowCmd(app),
	)

	return cmd
}

func newSessionsListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			summaries, err := app.sessions.List(cmd.Context())
			if err != nil {
				return err
			}

			if len(summaries) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no archived sessions")
				return err
			}

			for _, summary := range summaries {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d turns\n",
					summary.ID,
					summary.StartedAt.Format(time.RFC3339),
					summary.Root,
					summary.TurnCount,
				)
			}

			return nil
		},
	}
}

func newSessionsShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print an archived session transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.sessions.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "session %s\nworkspace %s\nstarted %s\n",
				session.ID, session.Root, session.StartedAt.Format(time.RFC3339))
			if len(session.PinnedPaths) > 0 {
				_, _ = fmt.Fprintf(out, "pinned %s\n", strings.Join(session.PinnedPaths, ", "))
			}

			for _, turn := range session.Turns {
				_, _ = fmt.Fprintf(out, "\n[%s] %s\n", turn.Speaker, turn.Text)
			}

			return nil
		},
	}
}
