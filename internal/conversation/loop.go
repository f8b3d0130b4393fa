// Package conversation drives the prompt -> match -> respond cycle as an
// explicit state machine over injectable input and output ports.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vthunder/parley/internal/logging"
	"github.com/vthunder/parley/internal/profiling"
)

// State is a conversation loop state
type State int

const (
	Greeting State = iota
	Awaiting
	Responding
	Exited
)

func (s State) String() string {
	switch s {
	case Greeting:
		return "greeting"
	case Awaiting:
		return "awaiting"
	case Responding:
		return "responding"
	case Exited:
		return "exited"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Input shows a prompt and blocks for the next utterance.
// io.EOF ends the conversation.
type Input interface {
	Prompt(ctx context.Context, prompt string) (string, error)
}

// Output displays one line of bot text
type Output interface {
	Emit(ctx context.Context, text string) error
}

// Responder turns one utterance into one response
type Responder interface {
	Respond(ctx context.Context, utterance string) (string, error)
}

// GreetingConfig configures the opt-in exchange. A nil GreetingConfig
// skips straight to Awaiting.
type GreetingConfig struct {
	NamePrompt    string
	OptInPrompt   string // {name} is replaced with the collected name
	NegativeWords []string
}

// Config is the immutable per-session configuration
type Config struct {
	Greeting       *GreetingConfig
	OpeningPrompt  string
	FollowUpPrompt string
	// ReplyAsPrompt uses each response as the next prompt instead of
	// emitting it separately
	ReplyAsPrompt bool
	ExitWords     []string
	Farewell      string
	Fallback      string
}

// Loop runs one conversation. It keeps only the current utterance and
// the exit flag; nothing carries over between turns.
type Loop struct {
	cfg       Config
	in        Input
	out       Output
	responder Responder
	profiler  *profiling.Profiler

	state     State
	name      string
	utterance string
	prompt    string
	turns     int
}

// NewLoop creates a loop in the Greeting state (or Awaiting when no
// greeting is configured)
func NewLoop(cfg Config, in Input, out Output, responder Responder) *Loop {
	l := &Loop{
		cfg:       cfg,
		in:        in,
		out:       out,
		responder: responder,
		state:     Greeting,
		prompt:    cfg.OpeningPrompt,
	}
	if cfg.Greeting == nil {
		l.state = Awaiting
	}
	return l
}

// SetProfiler records stage timings for every turn
func (l *Loop) SetProfiler(p *profiling.Profiler) {
	l.profiler = p
}

// State returns the current state
func (l *Loop) State() State {
	return l.state
}

// Name returns the display name collected during the greeting
func (l *Loop) Name() string {
	return l.name
}

// Turns returns how many utterances were answered
func (l *Loop) Turns() int {
	return l.turns
}

// Run drives the loop until Exited. There is no turn limit: only an exit
// word, a negative greeting answer, input EOF or ctx ends it.
func (l *Loop) Run(ctx context.Context) error {
	for l.state != Exited {
		if err := ctx.Err(); err != nil {
			return err
		}

		var (
			next State
			err  error
		)
		switch l.state {
		case Greeting:
			next, err = l.greet(ctx)
		case Awaiting:
			next, err = l.await(ctx)
		case Responding:
			next, err = l.respond(ctx)
		default:
			return fmt.Errorf("invalid state %s", l.state)
		}
		if errors.Is(err, io.EOF) {
			logging.Debug("conversation", "input closed in %s", l.state)
			next, err = Exited, nil
		}
		if err != nil {
			return err
		}
		logging.Debug("conversation", "%s -> %s", l.state, next)
		l.state = next
	}

	if err := l.out.Emit(ctx, l.cfg.Farewell); err != nil {
		return fmt.Errorf("emit farewell: %w", err)
	}
	return nil
}

func (l *Loop) greet(ctx context.Context) (State, error) {
	g := l.cfg.Greeting

	name, err := l.in.Prompt(ctx, g.NamePrompt)
	if err != nil {
		return Exited, err
	}
	l.name = strings.TrimSpace(name)

	answer, err := l.in.Prompt(ctx, strings.ReplaceAll(g.OptInPrompt, "{name}", l.name))
	if err != nil {
		return Exited, err
	}
	if IsNegative(answer, g.NegativeWords) {
		logging.Info("conversation", "%s declined to chat", l.name)
		return Exited, nil
	}
	return Awaiting, nil
}

func (l *Loop) await(ctx context.Context) (State, error) {
	done := l.profiler.Start(profiling.LevelDetailed, l.turns+1, "await")
	utterance, err := l.in.Prompt(ctx, l.prompt)
	done()
	if err != nil {
		return Exited, err
	}
	l.utterance = utterance
	if IsExit(utterance, l.cfg.ExitWords) {
		return Exited, nil
	}
	return Responding, nil
}

func (l *Loop) respond(ctx context.Context) (State, error) {
	done := l.profiler.Start(profiling.LevelMinimal, l.turns+1, "respond")
	response, err := l.responder.Respond(ctx, l.utterance)
	done()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Exited, ctxErr
		}
		logging.Info("conversation", "turn %d on %q failed, using fallback: %v",
			l.turns+1, logging.Truncate(l.utterance, 40), err)
		response = l.cfg.Fallback
	}
	if strings.TrimSpace(response) == "" {
		response = l.cfg.Fallback
	}
	l.turns++
	l.utterance = ""

	if l.cfg.ReplyAsPrompt {
		l.prompt = response
		return Awaiting, nil
	}
	done = l.profiler.Start(profiling.LevelDetailed, l.turns, "emit")
	err = l.out.Emit(ctx, response)
	done()
	if err != nil {
		return Exited, fmt.Errorf("emit response: %w", err)
	}
	l.prompt = l.cfg.FollowUpPrompt
	return Awaiting, nil
}

// IsExit reports whether any exit word occurs anywhere in the utterance,
// ignoring case. Substring containment is intended: "know" contains "no".
func IsExit(utterance string, exitWords []string) bool {
	text := strings.ToLower(utterance)
	for _, w := range exitWords {
		if w != "" && strings.Contains(text, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// IsNegative reports whether the whole answer equals one of the negative
// words after trimming and lowercasing
func IsNegative(answer string, negativeWords []string) bool {
	text := strings.ToLower(strings.TrimSpace(answer))
	for _, w := range negativeWords {
		if text == strings.ToLower(w) {
			return true
		}
	}
	return false
}
