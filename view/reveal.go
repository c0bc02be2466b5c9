package view

import "sync"

// Latch fires each key at most once. A watcher mounted for a key runs on the
// first Trigger and is detached afterwards; Close detaches everything.
type Latch[K comparable] struct {
	mu       sync.Mutex
	watchers map[K]func()
	fired    map[K]bool
	closed   bool
}

// NewLatch returns an empty latch.
func NewLatch[K comparable]() *Latch[K] {
	return &Latch[K]{
		watchers: make(map[K]func()),
		fired:    make(map[K]bool),
	}
}

// Watch mounts fn for key. It returns false when key already fired or the
// latch is closed. Mounting twice replaces the earlier watcher.
func (l *Latch[K]) Watch(key K, fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.fired[key] {
		return false
	}
	l.watchers[key] = fn
	return true
}

// Trigger fires key. Only the first call for a key returns true.
func (l *Latch[K]) Trigger(key K) bool {
	l.mu.Lock()
	if l.closed || l.fired[key] {
		l.mu.Unlock()
		return false
	}
	l.fired[key] = true
	fn := l.watchers[key]
	delete(l.watchers, key)
	l.mu.Unlock()

	if fn != nil {
		fn()
	}
	return true
}

// Fired reports whether key has fired.
func (l *Latch[K]) Fired(key K) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fired[key]
}

// Watching returns the number of mounted watchers.
func (l *Latch[K]) Watching() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.watchers)
}

// Close detaches all watchers. Fired keys stay fired.
func (l *Latch[K]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	clear(l.watchers)
}

// Landing page section ids, top to bottom.
const (
	SectionHero      = "hero"
	SectionPain      = "pain"
	SectionSolutions = "solutions"
	SectionMassager  = "massager"
	SectionGR        = "gr"
	SectionInjector  = "injector"
	SectionCTA       = "cta"
)

// LandingSections lists the sections that reveal on scroll.
var LandingSections = []string{
	SectionHero,
	SectionPain,
	SectionSolutions,
	SectionMassager,
	SectionGR,
	SectionInjector,
	SectionCTA,
}

// MountLanding returns a latch watching every landing section with the hero
// already revealed. onReveal, when set, is called once per revealed section.
func MountLanding(onReveal func(section string)) *Latch[string] {
	l := NewLatch[string]()
	for _, id := range LandingSections {
		l.Watch(id, func() {
			if onReveal != nil {
				onReveal(id)
			}
		})
	}
	l.Trigger(SectionHero)
	return l
}
