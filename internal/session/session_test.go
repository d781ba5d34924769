package session

import (
	"fmt"
	"sync"
	"testing"
)

func TestPutGetDelete(t *testing.T) {
	s := NewMemoryStore()

	id := Identity{UserID: "u1", Email: "a@x.com", Name: "A A", Role: "user"}
	s.Put("tok1", id)

	got, ok := s.Get("tok1")
	if !ok {
		t.Fatal("expected session to be found")
	}
	if got != id {
		t.Errorf("got %+v, want %+v", got, id)
	}

	s.Delete("tok1")
	if _, ok := s.Get("tok1"); ok {
		t.Error("expected session to be gone after delete")
	}
}

func TestGetUnknownToken(t *testing.T) {
	s := NewMemoryStore()
	if _, ok := s.Get("nope"); ok {
		t.Error("expected unknown token to miss")
	}
}

func TestDeleteUnknownTokenIsNoop(t *testing.T) {
	s := NewMemoryStore()
	s.Delete("never-existed")
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}

func TestPutReplaces(t *testing.T) {
	s := NewMemoryStore()
	s.Put("tok", Identity{UserID: "u1", Role: "user"})
	s.Put("tok", Identity{UserID: "u1", Role: "admin"})

	got, _ := s.Get("tok")
	if got.Role != "admin" {
		t.Errorf("expected replaced identity, got role %q", got.Role)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 session, got %d", s.Len())
	}
}

func TestIsAdmin(t *testing.T) {
	if !(Identity{Role: "admin"}).IsAdmin() {
		t.Error("admin role should be admin")
	}
	if (Identity{Role: "user"}).IsAdmin() {
		t.Error("user role should not be admin")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tok := fmt.Sprintf("tok-%d", n)
			s.Put(tok, Identity{UserID: fmt.Sprintf("u%d", n), Role: "user"})
			if _, ok := s.Get(tok); !ok {
				t.Errorf("session %s missing after put", tok)
			}
			if n%2 == 0 {
				s.Delete(tok)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 25 {
		t.Errorf("expected 25 sessions remaining, got %d", s.Len())
	}
}
