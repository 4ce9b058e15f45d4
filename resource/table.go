package resource

import (
	"sync"
)

// Table maps handles to values of type T and notifies observers when
// entries come and go. Freed handles are reused.
type Table[T any] struct {
	entries   []slot[T]
	freeList  []Handle
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type slot[T any] struct {
	value T
	valid bool
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		entries:  make([]slot[T], 0, 16),
		freeList: make([]Handle, 0, 4),
	}
}

// Insert adds a value and returns its handle, or 0 if the table is closed.
func (t *Table[T]) Insert(value T) Handle {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0
	}

	var handle Handle
	if n := len(t.freeList); n > 0 {
		handle = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[handle-1] = slot[T]{value: value, valid: true}
	} else {
		t.entries = append(t.entries, slot[T]{value: value, valid: true})
		handle = Handle(len(t.entries))
	}
	t.mu.Unlock()

	t.notify(Event{Type: EventCreated, Handle: handle, Value: value})
	return handle
}

// Get retrieves a value by handle.
func (t *Table[T]) Get(handle Handle) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var zero T
	if handle == 0 || int(handle) > len(t.entries) {
		return zero, false
	}
	s := t.entries[handle-1]
	if !s.valid {
		return zero, false
	}
	return s.value, true
}

// Remove drops an entry and returns (value, true) if it was present.
// Values implementing Dropper have Drop called once.
func (t *Table[T]) Remove(handle Handle) (T, bool) {
	t.mu.Lock()
	var zero T
	if handle == 0 || int(handle) > len(t.entries) || !t.entries[handle-1].valid {
		t.mu.Unlock()
		return zero, false
	}
	value := t.entries[handle-1].value
	t.entries[handle-1] = slot[T]{}
	t.freeList = append(t.freeList, handle)
	t.mu.Unlock()

	if d, ok := any(value).(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{Type: EventDropped, Handle: handle, Value: value})
	return value, true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[T]) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer. o must be comparable; an ObserverFunc
// cannot be unsubscribed.
func (t *Table[T]) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live entries.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries) - len(t.freeList)
}

// Each calls fn for every live entry until fn returns false.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i, s := range t.entries {
		if s.valid && !fn(Handle(i+1), s.value) {
			return
		}
	}
}

// Clear removes all entries.
func (t *Table[T]) Clear() {
	// Collect handles first to avoid holding lock during Remove
	var handles []Handle
	t.Each(func(h Handle, _ T) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close removes all entries and stops accepting inserts.
func (t *Table[T]) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.Clear()
	return nil
}

func (t *Table[T]) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
