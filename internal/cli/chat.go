package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatPlain bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Start an interactive chat with the assistant.

On a terminal this opens the full-screen chat. Press tab to move between the
input and the answers, then y / n to rate the selected answer and r to
regenerate it.

When input or output is not a terminal, or with --plain, a line-based chat
is used instead. Type /help there for the available commands.

Examples:
  zizi chat
  zizi chat --plain
  echo "What is ECD?" | zizi chat`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "use the line-based chat even on a terminal")
}

// usesTUI reports whether cmd will run the full-screen chat.
func usesTUI(cmd *cobra.Command) bool {
	if cmd.Name() != "chat" || chatPlain {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func runChat(cmd *cobra.Command, args []string) error {
	if usesTUI(cmd) {
		return RunChatUI(newConversation(nil), cfg.BotName, cfg.Timeout)
	}
	return runREPL(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cfg.BotName, newConversation)
}
