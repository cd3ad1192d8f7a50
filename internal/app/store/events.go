package store

// Collection names the list a change applies to
type Collection string

const (
	CollectionStudents Collection = "students"
	CollectionCourses  Collection = "courses"
)

// Action describes what happened to a collection
type Action string

const (
	ActionLoaded  Action = "loaded"
	ActionFailed  Action = "failed"
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Change is sent to subscribers after the store's state changed
type Change struct {
	Collection Collection `json:"collection"`
	Action     Action     `json:"action"`
	ID         string     `json:"id,omitempty"`
}

// listenerBuffer is the per-subscriber queue size
const listenerBuffer = 32

// Subscribe registers a listener for change events. The channel is closed on
// Unsubscribe or Close.
func (s *Store) Subscribe() <-chan Change {
	ch := make(chan Change, listenerBuffer)

	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		close(ch)
		return ch
	}

	s.listeners[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a listener returned by Subscribe
func (s *Store) Unsubscribe(sub <-chan Change) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	for ch := range s.listeners {
		if ch == sub {
			delete(s.listeners, ch)
			close(ch)
			return
		}
	}
}

// emit delivers a change without blocking; slow listeners miss events
func (s *Store) emit(c Change) {
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()

	for ch := range s.listeners {
		select {
		case ch <- c:
		default:
			s.logger.Warn().Str("collection", string(c.Collection)).Msg("Skipped slow store listener")
		}
	}
}
