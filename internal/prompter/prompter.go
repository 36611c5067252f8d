// Package prompter supplies user-turn policies for scenario runs:
// scripted, human-in-the-loop, and trace replay.
package prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/scenario"
)

// Prompter produces the next user message for a run. ok reports whether
// the conversation continues; a stopped prompter ends the run cleanly.
type Prompter interface {
	NextMessage(messages []models.Message, turn int, s scenario.Scenario) (msg string, ok bool, err error)
}

// Scripted delegates to the scenario's own policy when it provides one,
// otherwise sends a single kickoff instruction and stops. The policy is
// requested once and pinned for the whole run so per-run policy state is
// preserved across turns.
type Scripted struct {
	policy scenario.ScriptedPolicy
}

func NewScripted() *Scripted { return &Scripted{} }

func (p *Scripted) NextMessage(messages []models.Message, turn int, s scenario.Scenario) (string, bool, error) {
	if p.policy == nil {
		if provider, ok := s.(scenario.PolicyProvider); ok {
			p.policy = provider.ScriptedPolicy()
		}
	}
	if p.policy != nil {
		msg, ok := p.policy.NextMessage(messages, turn, s)
		return msg, ok, nil
	}
	if turn == 0 {
		return "Please begin the task as described in the system prompt.", true, nil
	}
	return "", false, nil
}

// Human reads user turns interactively. Typing quit, exit, or q (or
// closing stdin) ends the conversation.
type Human struct {
	in  io.Reader
	out io.Writer
}

type HumanOption func(*Human)

// WithStreams overrides stdin/stdout, used by tests.
func WithStreams(in io.Reader, out io.Writer) HumanOption {
	return func(h *Human) {
		h.in = in
		h.out = out
	}
}

func NewHuman(opts ...HumanOption) *Human {
	h := &Human{in: os.Stdin, out: os.Stdout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (p *Human) NextMessage(messages []models.Message, turn int, s scenario.Scenario) (string, bool, error) {
	if len(messages) > 0 {
		last := messages[len(messages)-1]
		content := last.Content
		if len(content) > 2000 {
			content = content[:2000]
		}
		fmt.Fprintf(p.out, "\n--- %s ---\n%s\n", strings.ToUpper(string(last.Role)), content)
	}
	fmt.Fprintf(p.out, "\nTurn %d | Type 'quit' to exit\n", turn+1)

	line, err := p.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, huh.ErrUserAborted) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading user input: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "quit", "exit", "q":
		return "", false, nil
	}
	return line, true, nil
}

// readLine uses the interactive form only when stdin is a real terminal;
// piped input falls back to a plain line read.
func (p *Human) readLine() (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		var line string
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("You").Value(&line),
		))
		if err := form.Run(); err != nil {
			return "", err
		}
		return line, nil
	}

	reader := bufio.NewReader(p.in)
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\n"), nil
}

// Replay feeds a fixed sequence of user messages, then stops.
type Replay struct {
	messages []string
	index    int
}

func NewReplay(userMessages []string) *Replay {
	return &Replay{messages: userMessages}
}

func (p *Replay) NextMessage(_ []models.Message, _ int, _ scenario.Scenario) (string, bool, error) {
	if p.index >= len(p.messages) {
		return "", false, nil
	}
	msg := p.messages[p.index]
	p.index++
	return msg, true, nil
}
