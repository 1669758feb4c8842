package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/raphaelgruber/zizi-chat/internal/conversation"
	"github.com/raphaelgruber/zizi-chat/internal/models"
)

const replHelp = `Commands:
  <text>        ask a question
  /up N         thumbs up for answer N
  /down N       thumbs down for answer N
  /regen N      regenerate answer N
  /help         show this help
  /quit         leave the chat`

// conversationFactory builds a conversation that reports changes to observer.
type conversationFactory func(observer func(conversation.Snapshot)) *conversation.Conversation

// replPrinter prints the parts of each snapshot that changed since the last one.
type replPrinter struct {
	out     io.Writer
	botName string
	last    conversation.Snapshot
}

func (p *replPrinter) update(snap conversation.Snapshot) {
	for i := range snap.Messages {
		msg := snap.Messages[i]
		switch {
		case i >= len(p.last.Messages):
			p.printMessage(i, msg, "")
		case msg.Content != p.last.Messages[i].Content || msg.Source != p.last.Messages[i].Source:
			p.printMessage(i, msg, " (regenerated)")
		}
	}

	for i := range snap.FeedbackGiven {
		if !p.last.FeedbackGiven[i] {
			fmt.Fprintf(p.out, "  [%d] %s\n", i, recordedText)
		}
	}

	if snap.Loading && !p.last.Loading {
		fmt.Fprintf(p.out, "  %s is typing...\n", p.botName)
	}
	if snap.Regenerating != conversation.NoIndex && snap.Regenerating != p.last.Regenerating {
		fmt.Fprintf(p.out, "  [%d] %s\n", snap.Regenerating, regeneratingText)
	}

	p.last = snap
}

func (p *replPrinter) printMessage(i int, msg models.Message, note string) {
	if msg.Role == models.RoleUser {
		fmt.Fprintf(p.out, "[%d] %s: %s\n", i, msg.Role.DisplayName(p.botName), msg.Content)
		return
	}

	fmt.Fprintf(p.out, "[%d] %s%s: %s\n", i, msg.Role.DisplayName(p.botName), note, msg.Content)
	if msg.ShowSource() {
		fmt.Fprintf(p.out, "    Source: %s\n", msg.Source)
	}
	if i == 0 {
		return
	}
	hint := fmt.Sprintf("    %s /up %d  /down %d", helpfulText, i, i)
	if msg.CanRegenerate() {
		hint += fmt.Sprintf("  /regen %d", i)
	}
	fmt.Fprintln(p.out, hint)
}

// runREPL runs a line-oriented chat on in/out until EOF or /quit.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, botName string, newConv conversationFactory) error {
	printer := &replPrinter{out: out, botName: botName}
	conv := newConv(printer.update)
	defer conv.Close()

	printer.update(conv.Snapshot())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := scanner.Text()
		cmd, arg, isCommand := parseCommand(line)
		if !isCommand {
			conv.SubmitQuery(ctx, line)
			continue
		}

		switch cmd {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(out, replHelp)
		case "up", "down", "regen":
			index, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintf(out, "  usage: /%s N\n", cmd)
				continue
			}
			if !runIndexCommand(ctx, conv, cmd, index) {
				fmt.Fprintf(out, "  (nothing to do for [%d])\n", index)
			}
		default:
			fmt.Fprintf(out, "  unknown command /%s, try /help\n", cmd)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func runIndexCommand(ctx context.Context, conv *conversation.Conversation, cmd string, index int) bool {
	switch cmd {
	case "regen":
		return conv.RegenerateAnswer(ctx, index)
	default:
		kind, _ := models.ParseFeedbackKind(cmd)
		return conv.SubmitFeedback(ctx, index, kind)
	}
}

// parseCommand splits "/name arg" lines. Plain text is not a command.
func parseCommand(line string) (name, arg string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		return "", "", false
	}
	fields := strings.Fields(trimmed[1:])
	if len(fields) == 0 {
		return "", "", false
	}
	name = strings.ToLower(fields[0])
	if len(fields) > 1 {
		arg = fields[1]
	}
	return name, arg, true
}
