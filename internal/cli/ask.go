package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/zizi-chat/internal/models"
)

var askFeedback string

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask a single question and print the answer",
	Long: `Ask a single question and print the answer with its source.

Use --feedback to rate the answer right away.

Examples:
  zizi ask "What is ECD?"
  zizi ask "What is ECD?" --feedback thumbs_up
  zizi ask "Who funds the programme?" --feedback down`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askFeedback, "feedback", "", "rate the answer (thumbs_up|thumbs_down)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	var kind models.FeedbackKind
	if askFeedback != "" {
		var ok bool
		kind, ok = models.ParseFeedbackKind(askFeedback)
		if !ok {
			return fmt.Errorf("invalid feedback %q: use thumbs_up or thumbs_down", askFeedback)
		}
	}

	ctx := cmd.Context()
	conv := newConversation(nil)
	defer conv.Close()

	if !conv.SubmitQuery(ctx, args[0]) {
		return errors.New("query must not be empty")
	}

	snap := conv.Snapshot()
	answer := snap.Last()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, answer.Content)
	if answer.ShowSource() {
		fmt.Fprintf(out, "Source: %s\n", answer.Source)
	}

	// Only a successful answer remembers its query.
	if !answer.CanRegenerate() {
		return errors.New("no answer from the chat backend")
	}

	if kind == "" {
		return nil
	}
	index := len(snap.Messages) - 1
	conv.SubmitFeedback(ctx, index, kind)
	if !conv.Snapshot().HasFeedback(index) {
		return errors.New("failed to record feedback")
	}
	fmt.Fprintln(out, recordedText)
	return nil
}
