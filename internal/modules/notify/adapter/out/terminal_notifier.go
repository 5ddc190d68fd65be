package out

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	reminderdomain "focusd/internal/modules/reminder/domain"
	reminderout "focusd/internal/modules/reminder/port/out"
)

// TerminalNotifier is the built-in prompt surface: print the question,
// read one line. Anything other than a clear yes/no counts as none.
type TerminalNotifier struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalNotifier(in io.Reader, out io.Writer) reminderout.Notifier {
	return &TerminalNotifier{in: bufio.NewReader(in), out: out}
}

func (n *TerminalNotifier) Notify(_ context.Context, prompt reminderdomain.Prompt) (reminderdomain.Answer, error) {
	if _, err := fmt.Fprintf(n.out, "\n[%s] %s [y/n] ", prompt.Kind, prompt.Message); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	line, err := n.in.ReadString('\n')
	if err != nil && line == "" {
		return reminderdomain.AnswerNone, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return reminderdomain.AnswerYes, nil
	case "n", "no":
		return reminderdomain.AnswerNo, nil
	default:
		return reminderdomain.AnswerNone, nil
	}
}
