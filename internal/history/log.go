package history

import (
	"image"

	"github.com/opd-ai/go-threadpaint/internal/canvas"
	"github.com/opd-ai/go-threadpaint/internal/command"
)

// DefaultMaxCommands is the number of undoable commands kept by default.
const DefaultMaxCommands = 256

// Log is a capacity-bounded sequence of commands with a cursor marking how
// many of them are applied. Commands at or after the cursor form the redo
// branch.
//
// Log is not safe for concurrent use; callers guard it with the same lock
// that guards readers of the canonical bitmap.
type Log struct {
	max      int
	commands []command.Command
	cursor   int
	surface  *Surface
	evicted  int
}

// NewLog returns an empty log keeping at most maxCommands commands.
// Values below one select DefaultMaxCommands.
func NewLog(maxCommands int) *Log {
	if maxCommands < 1 {
		maxCommands = DefaultMaxCommands
	}
	return &Log{
		max:      maxCommands,
		commands: make([]command.Command, 0, maxCommands),
	}
}

// Reset replaces the baseline with a copy of img and drops all history.
// Afterwards the canonical bitmap equals img.
func (l *Log) Reset(img image.Image) error {
	s, err := NewSurface(img)
	if err != nil {
		return err
	}
	l.Clear()
	l.surface = s
	return nil
}

// Commit draws cmd onto the canonical bitmap and records it. The redo branch
// is discarded first. When the log is full its oldest command is folded into
// the baseline to make room.
func (l *Log) Commit(cmd command.Command) error {
	if l.surface == nil {
		return ErrNoSurface
	}

	l.truncate(l.cursor)
	l.surface.Apply(cmd)

	if len(l.commands) == l.max {
		l.surface.FoldIntoBaseline(l.commands[0])
		copy(l.commands, l.commands[1:])
		l.truncate(len(l.commands) - 1)
		l.evicted++
	}

	l.commands = append(l.commands, cmd)
	l.cursor = len(l.commands)
	return nil
}

// Undo steps back one command and rebuilds the canonical bitmap from the
// baseline. It reports false, changing nothing, when nothing is applied.
func (l *Log) Undo() bool {
	if l.cursor == 0 || l.surface == nil {
		return false
	}
	l.cursor--
	l.surface.ReplayFromBaseline(l.commands[:l.cursor])
	return true
}

// Redo re-applies the next command of the redo branch. It reports false,
// changing nothing, when the redo branch is empty.
func (l *Log) Redo() bool {
	if l.cursor == len(l.commands) || l.surface == nil {
		return false
	}
	l.surface.Apply(l.commands[l.cursor])
	l.cursor++
	return true
}

// Clear drops the bitmaps and all history.
func (l *Log) Clear() {
	l.truncate(0)
	l.cursor = 0
	l.evicted = 0
	if l.surface != nil {
		l.surface.Release()
		l.surface = nil
	}
}

// truncate shortens the log to n commands, zeroing the dropped slots so
// their paths can be collected.
func (l *Log) truncate(n int) {
	clear(l.commands[n:])
	l.commands = l.commands[:n]
}

// Size returns the number of recorded commands.
func (l *Log) Size() int { return len(l.commands) }

// Cursor returns the number of applied commands.
func (l *Log) Cursor() int { return l.cursor }

// Cap returns the maximum number of recorded commands.
func (l *Log) Cap() int { return l.max }

// Evicted returns how many commands were folded into the baseline since
// the last reset.
func (l *Log) Evicted() int { return l.evicted }

// CanUndo reports whether Undo would change anything.
func (l *Log) CanUndo() bool { return l.cursor > 0 }

// CanRedo reports whether Redo would change anything.
func (l *Log) CanRedo() bool { return l.cursor < len(l.commands) }

// At returns the i-th recorded command, counting from the oldest. It panics
// when i is out of range, like a slice index.
func (l *Log) At(i int) command.Command { return l.commands[i] }

// Commands returns a copy of the recorded commands, redo branch included.
func (l *Log) Commands() []command.Command {
	return append([]command.Command(nil), l.commands...)
}

// Ready reports whether the log has a surface to draw on.
func (l *Log) Ready() bool { return l.surface != nil }

// Canonical returns the live canonical bitmap, or nil before Reset.
// Callers must hold the lock guarding the log while reading it.
func (l *Log) Canonical() *image.RGBA {
	if l.surface == nil {
		return nil
	}
	return l.surface.Canonical()
}

// Snapshot returns a copy of the canonical bitmap, or nil before Reset.
func (l *Log) Snapshot() *image.RGBA {
	if l.surface == nil {
		return nil
	}
	return canvas.Clone(l.surface.Canonical())
}
