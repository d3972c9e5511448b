package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestClipboard(t *testing.T) {
	var c Clipboard
	ctx := context.Background()
	if err := c.WriteText(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := c.WriteText(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.ReadText(ctx); got != "b" {
		t.Errorf("ReadText = %q", got)
	}
	if len(c.Writes) != 2 {
		t.Errorf("Writes = %v", c.Writes)
	}

	c.Fail = true
	if err := c.WriteText(ctx, "c"); !errors.Is(err, ErrDenied) {
		t.Errorf("expected ErrDenied, got %v", err)
	}
	if c.Text != "b" {
		t.Errorf("failed write changed text to %q", c.Text)
	}
}

func TestWriteReadFile(t *testing.T) {
	dir := t.TempDir()
	path := WriteFile(t, dir, filepath.Join("sub", "x.txt"), "hello")
	if got := ReadFile(t, path); got != "hello" {
		t.Errorf("ReadFile = %q", got)
	}
}
