package statesvc

import (
	"log/slog"
	"sync"

	"github.com/hostkit/statedemo/internal/models"
)

// notifier fans lifecycle notifications out to registered hooks. A hook
// that panics is isolated so one bad subscriber cannot take down the
// others or the service.
type notifier struct {
	mu       sync.Mutex
	nextID   int
	saves    map[int]SaveHook
	restores map[int]RestoreHook
	clears   map[int]ClearHook
}

func (n *notifier) onSave(fn SaveHook) Unsubscribe {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.saves == nil {
		n.saves = make(map[int]SaveHook)
	}
	id := n.nextID
	n.nextID++
	n.saves[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.saves, id)
	}
}

func (n *notifier) onRestore(fn RestoreHook) Unsubscribe {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.restores == nil {
		n.restores = make(map[int]RestoreHook)
	}
	id := n.nextID
	n.nextID++
	n.restores[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.restores, id)
	}
}

func (n *notifier) onClear(fn ClearHook) Unsubscribe {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.clears == nil {
		n.clears = make(map[int]ClearHook)
	}
	id := n.nextID
	n.nextID++
	n.clears[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.clears, id)
	}
}

func (n *notifier) notifySave(env models.Envelope) {
	n.mu.Lock()
	hooks := make([]SaveHook, 0, len(n.saves))
	for _, fn := range n.saves {
		hooks = append(hooks, fn)
	}
	n.mu.Unlock()
	for _, fn := range hooks {
		runHook("save", func() { fn(env) })
	}
}

func (n *notifier) notifyRestore(env models.Envelope) {
	n.mu.Lock()
	hooks := make([]RestoreHook, 0, len(n.restores))
	for _, fn := range n.restores {
		hooks = append(hooks, fn)
	}
	n.mu.Unlock()
	for _, fn := range hooks {
		runHook("restore", func() { fn(env) })
	}
}

func (n *notifier) notifyClear() {
	n.mu.Lock()
	hooks := make([]ClearHook, 0, len(n.clears))
	for _, fn := range n.clears {
		hooks = append(hooks, fn)
	}
	n.mu.Unlock()
	for _, fn := range hooks {
		runHook("clear", fn)
	}
}

// runHook runs one hook, converting a panic into a log line.
func runHook(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("statesvc: lifecycle hook panicked", "hook", kind, "panic", r)
		}
	}()
	fn()
}
