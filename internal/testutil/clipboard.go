// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"errors"
)

// ErrDenied is the default failure of a Clipboard with Fail set.
var ErrDenied = errors.New("clipboard access denied")

// Clipboard is an in-memory system clipboard. It satisfies the clipboard
// package's Writer and Reader.
type Clipboard struct {
	Text   string
	Writes []string
	// Fail makes every write fail with ErrDenied.
	Fail    bool
	ReadErr error
}

func (c *Clipboard) WriteText(_ context.Context, text string) error {
	if c.Fail {
		return ErrDenied
	}
	c.Writes = append(c.Writes, text)
	c.Text = text
	return nil
}

func (c *Clipboard) ReadText(context.Context) (string, error) {
	return c.Text, c.ReadErr
}
