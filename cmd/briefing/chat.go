package main

import (
	"context"
	"os"

	"github.com/phdev/briefing"
	"github.com/phdev/briefing/internal/cli"
	"github.com/phdev/briefing/internal/logging"
	"github.com/phdev/briefing/internal/presentation/tui"
	"github.com/phdev/briefing/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultWrap = 80

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run the briefing in the terminal",
	Long: `Plays the conversation on stdin/stdout. Markdown is rendered when stdout is
a terminal; piped output stays plain. Type /help for the commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []briefing.Option
		if !cmd.Flags().Changed("log-level") {
			// Logs would interleave with the chat.
			opts = append(opts, briefing.WithLogger(logging.NewNop()))
		}
		svc, _, err := loadService(cmd, opts...)
		if err != nil {
			return err
		}
		defer svc.Close()

		pkg, _ := cmd.Flags().GetString("package")
		sessionID, _ := cmd.Flags().GetString("session")
		plain, _ := cmd.Flags().GetBool("plain")

		out := cmd.OutOrStdout()
		chatOpts := []cli.ChatOption{
			cli.WithSeed(domain.Seed{ProjectType: pkg}),
			cli.WithSessionID(sessionID),
		}

		fd := int(os.Stdout.Fd())
		if !plain && term.IsTerminal(fd) {
			width := defaultWrap
			if w, _, err := term.GetSize(fd); err == nil && w > 0 && w < width {
				width = w
			}
			chatOpts = append(chatOpts, cli.WithRenderer(tui.NewRenderer(width)))
			tui.PrintBanner(out)
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		chat := svc.Chat(cmd.InOrStdin(), out, chatOpts...)
		view, runErr := chat.Run(sigCtx)
		if sigCtx.Err() != nil && runErr == nil {
			runErr = sigCtx.Err()
		}
		cli.LogCompletion(out, view, runErr, sigCtx.Signal())
		return cli.HandleExecutionError(runErr)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("package", "p", "", "Start seeded with a package (title or id)")
	chatCmd.Flags().StringP("session", "s", "", "Resume a stored session")
	chatCmd.Flags().Bool("plain", false, "Disable markdown rendering")
}
