package form

import (
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/mbolis/catering-order/log"
	"github.com/mbolis/catering-order/model"
)

// Store keeps the open sessions in memory. Sessions idle for longer than the
// TTL are dropped on the next Create or Get.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	navOpts  []NavigatorOption
}

type StoreOption func(*Store)

func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithNavigatorOptions applies opts to the navigator of every new session.
func WithNavigatorOptions(opts ...NavigatorOption) StoreOption {
	return func(s *Store) { s.navOpts = append(s.navOpts, opts...) }
}

func NewStore(ttl time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		sessions: map[string]*Session{},
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Create(schema *model.Schema, locale string) (*Session, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	session, err := NewSession(id.String(), schema, locale, s.navOpts...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	session.touched = s.now()
	s.sessions[session.ID] = session
	return session, nil
}

func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	session.touched = s.now()
	return session, nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) expired(session *Session) bool {
	return s.ttl > 0 && s.now().Sub(session.touched) > s.ttl
}

func (s *Store) sweep() {
	for id, session := range s.sessions {
		if s.expired(session) {
			delete(s.sessions, id)
			log.Debugf("session %s expired", id)
		}
	}
}
