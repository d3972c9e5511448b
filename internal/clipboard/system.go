package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// ErrUnavailable is returned when no clipboard mechanism accepted the text.
var ErrUnavailable = errors.New("no system clipboard available")

// Writer puts text on a clipboard.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

// Reader reads text from a clipboard.
type Reader interface {
	ReadText(ctx context.Context) (string, error)
}

// CommandWriter pipes text into a user-configured shell command.
type CommandWriter struct {
	Command string
}

func (w CommandWriter) WriteText(ctx context.Context, text string) error {
	if w.Command == "" {
		return ErrUnavailable
	}
	var c *exec.Cmd
	if runtime.GOOS == "windows" {
		c = exec.CommandContext(ctx, "cmd", "/c", w.Command)
	} else {
		c = exec.CommandContext(ctx, "/bin/sh", "-c", w.Command)
	}
	c.Stdin = strings.NewReader(text)
	if err := c.Run(); err != nil {
		return fmt.Errorf("clipboard command %q: %w", w.Command, err)
	}
	return nil
}

// System uses the platform clipboard utilities (pbcopy, clip, wl-copy,
// xclip, xsel, termux).
type System struct{}

func (System) WriteText(_ context.Context, text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll(text)
}

func (System) ReadText(_ context.Context) (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnavailable
	}
	return clipboard.ReadAll()
}

// OSC52 asks the terminal to set its clipboard with an OSC 52 escape
// sequence, wrapped for tmux or screen when running inside one.
type OSC52 struct {
	Out io.Writer
}

func (w OSC52) WriteText(_ context.Context, text string) error {
	if w.Out == nil {
		return ErrUnavailable
	}
	seq := osc52.New(text)
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(os.Getenv("TERM"), "screen"):
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(w.Out)
	return err
}

// Chain tries each writer in order until one succeeds.
type Chain []Writer

func (c Chain) WriteText(ctx context.Context, text string) error {
	var errs []error
	for _, w := range c {
		if w == nil {
			continue
		}
		err := w.WriteText(ctx, text)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(append([]error{ErrUnavailable}, errs...)...)
}

// NewSystemWriter returns the default chain: the configured command, if
// any, then the platform clipboard, then OSC 52 written to term.
func NewSystemWriter(command string, term io.Writer) Chain {
	var c Chain
	if command != "" {
		c = append(c, CommandWriter{Command: command})
	}
	c = append(c, System{})
	if term != nil {
		c = append(c, OSC52{Out: term})
	}
	return c
}
