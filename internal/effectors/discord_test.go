package effectors

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestIsNonRetryableError_GenericError(t *testing.T) {
	if isNonRetryableError(errors.New("network timeout")) {
		t.Error("generic error should be retryable")
	}
}

func TestIsNonRetryableError_4xxStatus(t *testing.T) {
	for _, code := range []int{400, 401, 403, 404, 429} {
		err := &discordgo.RESTError{
			Response: &http.Response{StatusCode: code},
		}
		if !isNonRetryableError(err) {
			t.Errorf("HTTP %d should be non-retryable", code)
		}
	}
}

func TestIsNonRetryableError_5xxStatus(t *testing.T) {
	for _, code := range []int{500, 502, 503} {
		err := &discordgo.RESTError{
			Response: &http.Response{StatusCode: code},
		}
		if isNonRetryableError(err) {
			t.Errorf("HTTP %d should be retryable (server error)", code)
		}
	}
}

func TestIsNonRetryableError_NilResponse(t *testing.T) {
	err := &discordgo.RESTError{Response: nil}
	if isNonRetryableError(err) {
		t.Error("RESTError with nil response should be retryable")
	}
}

type sent struct {
	channel, content string
}

func newTestEffector(failures []error) (*DiscordEffector, *[]sent) {
	var log []sent
	e := newDiscordEffector(func(channelID, content string) error {
		if len(failures) > 0 {
			err := failures[0]
			failures = failures[1:]
			return err
		}
		log = append(log, sent{channelID, content})
		return nil
	}, "123")
	e.initialBackoff = time.Millisecond
	return e, &log
}

func TestEmit_Sends(t *testing.T) {
	e, log := newTestEffector(nil)
	if err := e.Emit(context.Background(), "Ok, have a good day!"); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(*log) != 1 || (*log)[0] != (sent{"123", "Ok, have a good day!"}) {
		t.Errorf("unexpected sends: %v", *log)
	}
}

func TestEmit_RetriesServerErrors(t *testing.T) {
	e, log := newTestEffector([]error{
		errors.New("connection reset"),
		&discordgo.RESTError{Response: &http.Response{StatusCode: 502}},
	})
	if err := e.Emit(context.Background(), "hello"); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(*log) != 1 {
		t.Errorf("expected one delivered message, got %d", len(*log))
	}
}

func TestEmit_ClientErrorNotRetried(t *testing.T) {
	forbidden := &discordgo.RESTError{Response: &http.Response{StatusCode: 403}}
	e, log := newTestEffector([]error{forbidden})
	err := e.Emit(context.Background(), "hello")

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		t.Fatalf("expected RESTError, got %v", err)
	}
	if len(*log) != 0 {
		t.Errorf("nothing should be delivered, got %v", *log)
	}
}

func TestEmit_GivesUp(t *testing.T) {
	failures := make([]error, 100)
	for i := range failures {
		failures[i] = errors.New("gateway down")
	}
	e, _ := newTestEffector(failures)
	e.maxRetryDuration = 5 * time.Millisecond

	err := e.Emit(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "giving up") {
		t.Errorf("expected give-up error, got %v", err)
	}
}

func TestEmit_CanceledDuringBackoff(t *testing.T) {
	e, _ := newTestEffector([]error{errors.New("flaky")})
	e.initialBackoff = time.Second
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := e.Emit(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSplitMessage(t *testing.T) {
	if got := splitMessage("short", 10); len(got) != 1 || got[0] != "short" {
		t.Errorf("short message split: %v", got)
	}

	got := splitMessage("aaaa bbbb cccc", 10)
	if len(got) != 2 || got[0] != "aaaa bbbb " || got[1] != "cccc" {
		t.Errorf("word split: %q", got)
	}

	long := strings.Repeat("x", 25)
	got = splitMessage(long, 10)
	if len(got) != 3 || strings.Join(got, "") != long {
		t.Errorf("hard split: %q", got)
	}
}

func TestTerminal_Emit(t *testing.T) {
	var buf bytes.Buffer
	out := NewTerminal(&buf)
	if err := out.Emit(context.Background(), "Tell me more! "); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "Tell me more! \n" {
		t.Errorf("got %q", buf.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := out.Emit(ctx, "late"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTerminal_Style(t *testing.T) {
	var buf bytes.Buffer
	out := NewTerminal(&buf)
	out.SetStyle(func(s string) string { return "<" + s + ">" })
	if err := out.Emit(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "<hi>\n" {
		t.Errorf("got %q", buf.String())
	}

	if !strings.Contains(BotStyle("Ok, have a good day!"), "Ok, have a good day!") {
		t.Error("styled text should keep its content")
	}
}

func TestShouldUseColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if ShouldUseColor() {
		t.Error("NO_COLOR should disable color")
	}
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR", "")
	t.Setenv("CLICOLOR_FORCE", "1")
	if !ShouldUseColor() {
		t.Error("CLICOLOR_FORCE should enable color")
	}
}
