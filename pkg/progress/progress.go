// Package progress answers whether the player has completed a quest.
//
// A [Store] reads the completed quest ids from a TOML file:
//
//	completed = [65564, 65565, 66045]
//
// Reads are lock-free: the id set is replaced as a whole by [Store.Load]
// and [Store.Watch], and the canvas reads it every frame.
package progress

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"slices"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/questgraph/pkg/errors"
)

// Oracle reports quest completion.
type Oracle interface {
	IsQuestComplete(id uint32) bool
}

// None is an Oracle for which no quest is complete.
type None struct{}

// IsQuestComplete always returns false.
func (None) IsQuestComplete(uint32) bool { return false }

type file struct {
	Completed []uint32 `toml:"completed"`
}

// Store is an Oracle backed by a TOML file.
type Store struct {
	path      string
	completed atomic.Pointer[map[uint32]struct{}]
}

// NewStore returns a store for path. Nothing is read until [Store.Load].
func NewStore(path string) *Store {
	s := &Store{path: path}
	empty := map[uint32]struct{}{}
	s.completed.Store(&empty)
	return s
}

// Path returns the file the store reads.
func (s *Store) Path() string { return s.path }

// IsQuestComplete implements [Oracle].
func (s *Store) IsQuestComplete(id uint32) bool {
	_, ok := (*s.completed.Load())[id]
	return ok
}

// Completed returns the completed ids in ascending order.
func (s *Store) Completed() []uint32 {
	m := *s.completed.Load()
	out := make([]uint32, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Load reads the file and replaces the completed set. A missing file
// counts as no progress.
func (s *Store) Load() error {
	var f file
	if _, err := toml.DecodeFile(s.path, &f); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			empty := map[uint32]struct{}{}
			s.completed.Store(&empty)
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read progress file %s", s.path)
	}
	s.set(f.Completed)
	return nil
}

// Replace sets the completed ids directly.
func (s *Store) Replace(ids []uint32) { s.set(ids) }

func (s *Store) set(ids []uint32) {
	m := make(map[uint32]struct{}, len(ids))
	for _, id := range ids {
		if id != 0 {
			m[id] = struct{}{}
		}
	}
	s.completed.Store(&m)
}

// Watch reloads the file whenever it changes until ctx is done. onChange,
// if not nil, is called after each successful reload.
func (s *Store) Watch(ctx context.Context, logger *log.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return err
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) {
				continue
			}
			if err := s.Load(); err != nil {
				logger.Warn("progress reload failed", "path", s.path, "err", err)
				continue
			}
			logger.Debug("progress reloaded", "path", s.path, "completed", len(*s.completed.Load()))
			if onChange != nil {
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("progress watcher", "err", err)
		}
	}
}

var (
	_ Oracle = None{}
	_ Oracle = (*Store)(nil)
)
