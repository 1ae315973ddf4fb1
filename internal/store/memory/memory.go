// Package memory is an in-process store.Repository for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"booking-api/internal/model"
	"booking-api/internal/store"
)

type Store struct {
	mu           sync.RWMutex
	clients      map[int64]model.Client
	appointments map[int64]model.Appointment
	nextClient   int64
	nextAppt     int64
	now          func() time.Time
}

var _ store.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		clients:      make(map[int64]model.Client),
		appointments: make(map[int64]model.Appointment),
		now:          time.Now,
	}
}

func (s *Store) CreateClient(_ context.Context, c *model.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.clients {
		if o.Email == c.Email {
			return store.ErrEmailInUse
		}
	}
	s.nextClient++
	c.ID = s.nextClient
	c.DateJoined = s.now().UTC()
	s.clients[c.ID] = *c
	return nil
}

func (s *Store) ClientByID(_ context.Context, id int64) (*model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ClientByEmail(_ context.Context, email string) (*model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) DeleteClient(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.clients, id)
	for aid, a := range s.appointments {
		if a.ClientID == id {
			delete(s.appointments, aid)
		}
	}
	return nil
}

func (s *Store) CreateAppointment(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[a.ClientID]; !ok {
		return store.ErrNotFound
	}
	day := model.Day(a.Date)
	for _, o := range s.appointments {
		if o.ClientID == a.ClientID && o.Date.Equal(day) {
			return store.ErrAppointmentExists
		}
	}
	s.nextAppt++
	a.ID = s.nextAppt
	a.Date = day
	s.appointments[a.ID] = *a
	return nil
}

func (s *Store) ListAppointments(_ context.Context, clientID int64, f model.AppointmentFilter) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Appointment{}
	for _, a := range s.appointments {
		if a.ClientID != clientID {
			continue
		}
		if f.ID != nil && a.ID != *f.ID {
			continue
		}
		if f.Before != nil && !a.Date.Before(*f.Before) {
			continue
		}
		if f.After != nil && !a.Date.After(*f.After) {
			continue
		}
		if f.Paid != nil && a.Paid != *f.Paid {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteAppointment(_ context.Context, id, clientID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok || a.ClientID != clientID {
		return store.ErrNotFound
	}
	delete(s.appointments, id)
	return nil
}
