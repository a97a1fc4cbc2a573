package session

import (
	"sync"
	"testing"
	"time"
)

func TestNewSession(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := New("alice", "doctor", "alice@x.com", at)

	if !s.Authenticated {
		t.Fatal("expected authenticated session")
	}
	if s.ID == "" {
		t.Fatal("expected session id")
	}
	if s.Username != "alice" || s.Role != "doctor" || s.Email != "alice@x.com" {
		t.Fatalf("unexpected principal fields: %+v", s)
	}
	if !s.LoginTime.Equal(at) {
		t.Fatalf("expected login time %v, got %v", at, s.LoginTime)
	}
}

func TestClearResetsToZeroValue(t *testing.T) {
	s := New("alice", "doctor", "alice@x.com", time.Now())
	s.Clear()

	if *s != (Session{}) {
		t.Fatalf("expected zero value after Clear, got %+v", s)
	}

	var nilSession *Session
	nilSession.Clear() // must not panic
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	if m.Authenticated() {
		t.Fatal("new manager must start logged out")
	}

	s := New("bob", "patient", "bob@x.com", time.Now())
	m.Set(s)
	if !m.Authenticated() {
		t.Fatal("expected authenticated after Set")
	}
	if got := m.Current(); got.Username != "bob" {
		t.Fatalf("expected bob, got %q", got.Username)
	}

	m.Logout()
	if m.Authenticated() {
		t.Fatal("expected logged out after Logout")
	}
	if got := m.Current(); got != (Session{}) {
		t.Fatalf("expected zero session after Logout, got %+v", got)
	}
}

func TestManagerConcurrentAccess(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Set(New("alice", "doctor", "alice@x.com", time.Now()))
				_ = m.Current()
				m.Logout()
			}
		}()
	}
	wg.Wait()
}
