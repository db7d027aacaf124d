package console

import "sync"

// Level is the severity of a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "info"
}

// Notice is a blocking message shown to the administrator.
type Notice struct {
	Level   Level
	Message string
}

// Notifier receives notices raised by the views.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Confirmer asks the administrator to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// confirmed asks c, treating a nil Confirmer as Never.
func confirmed(c Confirmer, prompt string) bool {
	if c == nil {
		return false
	}
	return c.Confirm(prompt)
}

// Always confirms without asking.
var Always Confirmer = ConfirmFunc(func(string) bool { return true })

// Never declines without asking.
var Never Confirmer = ConfirmFunc(func(string) bool { return false })

// Notices collects notices until drained.
type Notices struct {
	mu    sync.Mutex
	items []Notice
}

// Notify appends n.
func (q *Notices) Notify(n Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
}

// Drain returns and forgets the pending notices.
func (q *Notices) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Len is the number of pending notices.
func (q *Notices) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
