package dialog

import "sync"

type Mode string

const (
	ModeNone   Mode = ""
	ModeAdd    Mode = "add"
	ModeEdit   Mode = "edit"
	ModeDelete Mode = "delete"
	ModeView   Mode = "view"
)

// Store is the per-feature dialog state: which dialog is open and the row
// it operates on. Each feature creates its own.
type Store[T any] struct {
	mu         sync.RWMutex
	open       Mode
	currentRow *T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{}
}

func (s *Store[T]) Open() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.open
}

func (s *Store[T]) SetOpen(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.open = mode
}

func (s *Store[T]) CurrentRow() *T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.currentRow
}

func (s *Store[T]) SetCurrentRow(row *T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentRow = row
}

// Show opens mode for row in one step.
func (s *Store[T]) Show(mode Mode, row *T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.open = mode
	s.currentRow = row
}

// Close resets both the open dialog and the current row.
func (s *Store[T]) Close() {
	s.Show(ModeNone, nil)
}
