package reports

import (
	"slices"
	"sync"
)

// Field is an externally owned text value. The form writes every input into
// it synchronously and observers registered with OnChange see each write.
type Field struct {
	mu        sync.RWMutex
	value     string
	observers []func(string)
}

func NewField(value string) *Field {
	return &Field{value: value}
}

func (f *Field) Value() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

// Set stores v and notifies observers in registration order. Observers run
// after the lock is released and may read the field.
func (f *Field) Set(v string) {
	f.mu.Lock()
	f.value = v
	observers := slices.Clone(f.observers)
	f.mu.Unlock()

	for _, fn := range observers {
		fn(v)
	}
}

func (f *Field) OnChange(fn func(string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, fn)
}

// Flag is an externally owned boolean, used for the owner's busy state.
type Flag struct {
	mu sync.RWMutex
	on bool
}

func (f *Flag) Set(on bool) {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.on = on
}

func (f *Flag) Value() bool {
	if f == nil {
		return false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.on
}
