package history

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/joeycumines/gridedit/internal/grid"
	"gopkg.in/yaml.v3"
)

// Op identifies which manager operation applied a command.
type Op string

const (
	OpExecute Op = "execute"
	OpUndo    Op = "undo"
	OpRedo    Op = "redo"
)

// ChangeFunc is notified after every successful Execute, Undo or Redo,
// once the model has been mutated.
type ChangeFunc func(op Op, cmd Command)

// JournalEntry records one applied operation.
type JournalEntry struct {
	Time    time.Time `yaml:"time"`
	Op      Op        `yaml:"op"`
	Name    string    `yaml:"name"`
	Command Command   `yaml:"command"`
}

// Manager owns the undo and redo stacks for one model.
type Manager struct {
	model    *grid.Model
	undo     []Command
	redo     []Command
	onChange []ChangeFunc
	limit    int
	logger   *slog.Logger
	journal  []JournalEntry
	record   bool
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit bounds the undo stack; the oldest entries are dropped once it
// exceeds n. Zero or negative means unbounded.
func WithLimit(n int) Option {
	return func(m *Manager) { m.limit = n }
}

// WithLogger sets the logger used for per-operation debug records.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithJournal enables recording of every applied operation.
func WithJournal() Option {
	return func(m *Manager) { m.record = true }
}

// NewManager returns a manager executing commands against model.
func NewManager(model *grid.Model, opts ...Option) *Manager {
	m := &Manager{
		model:  model,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Model returns the model commands are applied to.
func (m *Manager) Model() *grid.Model { return m.model }

// OnChange registers fn to be called after each mutation. Callbacks run in
// registration order.
func (m *Manager) OnChange(fn ChangeFunc) {
	m.onChange = append(m.onChange, fn)
}

// Execute applies cmd, pushes it onto the undo stack and clears the redo
// stack. A nil command is ignored.
func (m *Manager) Execute(cmd Command) {
	if cmd == nil {
		return
	}
	cmd.Do(m.model)
	m.undo = append(m.undo, cmd)
	if m.limit > 0 && len(m.undo) > m.limit {
		m.undo = append(m.undo[:0], m.undo[len(m.undo)-m.limit:]...)
	}
	clear(m.redo)
	m.redo = m.redo[:0]
	m.applied(OpExecute, cmd)
}

// Undo reverts the most recent command. It reports false when there was
// nothing to undo.
func (m *Manager) Undo() bool {
	if len(m.undo) == 0 {
		return false
	}
	cmd := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	cmd.Undo(m.model)
	m.redo = append(m.redo, cmd)
	m.applied(OpUndo, cmd)
	return true
}

// Redo reapplies the most recently undone command.
func (m *Manager) Redo() bool {
	if len(m.redo) == 0 {
		return false
	}
	cmd := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	cmd.Do(m.model)
	m.undo = append(m.undo, cmd)
	m.applied(OpRedo, cmd)
	return true
}

func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// UndoDepth returns the number of undoable commands.
func (m *Manager) UndoDepth() int { return len(m.undo) }

func (m *Manager) applied(op Op, cmd Command) {
	m.logger.Debug("history", "op", string(op), "command", cmd.Name(),
		"undo", len(m.undo), "redo", len(m.redo))
	if m.record {
		m.journal = append(m.journal, JournalEntry{Time: m.now(), Op: op, Name: cmd.Name(), Command: cmd})
	}
	for _, fn := range m.onChange {
		fn(op, cmd)
	}
}

// Journal returns a copy of the recorded operations. It is empty unless
// the manager was built WithJournal.
func (m *Manager) Journal() []JournalEntry {
	return append([]JournalEntry(nil), m.journal...)
}

// WriteJournal dumps the journal as YAML.
func (m *Manager) WriteJournal(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m.journal); err != nil {
		return fmt.Errorf("failed to encode journal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush journal: %w", err)
	}
	return nil
}
