package booking

import (
	"math/rand/v2"
	"time"
)

// Manager runs the reservation and timeshare workflows against a Store.
type Manager struct {
	store  Store
	now    func() time.Time
	suffix func() int
}

type Option func(*Manager)

// WithClock replaces the wall clock used for "today" and "now".
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithContractSuffix replaces the random 4 digit contract number suffix.
func WithContractSuffix(suffix func() int) Option {
	return func(m *Manager) {
		m.suffix = suffix
	}
}

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		now:    time.Now,
		suffix: randomSuffix,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func randomSuffix() int {
	return 1000 + rand.IntN(9000)
}

// Now is the manager's current instant.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Today is the manager's current calendar date.
func (m *Manager) Today() time.Time {
	return DateOf(m.now())
}

func authenticated(id *Identity) error {
	if id == nil || id.UserID == 0 {
		return ErrUnauthenticated
	}
	return nil
}

func staff(id *Identity) error {
	if err := authenticated(id); err != nil {
		return err
	}
	if !id.IsAdmin {
		return ErrForbidden
	}
	return nil
}
