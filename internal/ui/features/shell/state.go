package shell

import (
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapdash/internal/ui/layout"
)

// DefaultStateTTL is how long an idle browser keeps its shell state.
const DefaultStateTTL = 24 * time.Hour

// viewState is the UI state of one mounted shell.
type viewState struct {
	layout layout.State
	lang   language.Tag
	seen   time.Time
}

// states holds view state per session id. Entries are replaced on every full
// page load, which is when the shell mounts.
type states struct {
	mu  sync.Mutex
	m   map[string]viewState
	ttl time.Duration
	now func() time.Time
}

func newStates(ttl time.Duration) *states {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &states{m: make(map[string]viewState), ttl: ttl, now: time.Now}
}

func (s *states) get(id string) (viewState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.m[id]
	if !ok {
		return viewState{}, false
	}
	st.seen = s.now()
	s.m[id] = st
	return st, true
}

func (s *states) put(id string, st viewState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.seen = s.now()
	s.m[id] = st
}

// update applies fn atomically. It reports false when id has no state.
func (s *states) update(id string, fn func(viewState) viewState) (viewState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.m[id]
	if !ok {
		return viewState{}, false
	}
	st = fn(st)
	st.seen = s.now()
	s.m[id] = st
	return st, true
}

// prune drops state idle for longer than the ttl.
func (s *states) prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, st := range s.m {
		if st.seen.Before(cutoff) {
			delete(s.m, id)
			n++
		}
	}
	return n
}

func (s *states) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
