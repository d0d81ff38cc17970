package projects

import "sync"

// Selection is either None or Some.
type Selection interface {
	selection()
}

// None means no project is selected and no modal is shown.
type None struct{}

// Some carries the selected project.
type Some struct {
	Record Record
}

func (None) selection() {}
func (Some) selection() {}

// Modal holds the project currently shown in the detail view.
type Modal struct {
	mu       sync.RWMutex
	selected Selection
}

// NewModal returns a closed modal.
func NewModal() *Modal {
	return &Modal{selected: None{}}
}

// Open shows r, replacing any previous selection.
func (m *Modal) Open(r Record) {
	m.mu.Lock()
	m.selected = Some{Record: r}
	m.mu.Unlock()
}

// Close hides the modal.
func (m *Modal) Close() {
	m.mu.Lock()
	m.selected = None{}
	m.mu.Unlock()
}

// Selection returns the current selection.
func (m *Modal) Selection() Selection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selected
}
