package store

import (
	"fmt"
	"testing"
	"time"
)

func TestMemoryStorePutIfAbsent(t *testing.T) {
	s := NewMemoryStore(time.Minute, time.Hour, 1000)
	defer s.Close()

	rec := VerificationRecord{ActionType: "email-contact", VerifiedAt: time.Now()}
	if _, inserted, err := s.PutIfAbsent("digest-1", rec); err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}

	other := VerificationRecord{ActionType: "newsletter", VerifiedAt: time.Now()}
	existing, inserted, err := s.PutIfAbsent("digest-1", other)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if inserted {
		t.Error("second insert for the same key must lose")
	}
	if existing.ActionType != "email-contact" {
		t.Errorf("existing record action = %q, want email-contact", existing.ActionType)
	}
}

func TestMemoryStoreGetExpiry(t *testing.T) {
	s := NewMemoryStore(20*time.Millisecond, time.Hour, 1000)
	defer s.Close()

	rec := VerificationRecord{ActionType: "email-contact", VerifiedAt: time.Now()}
	if _, _, err := s.PutIfAbsent("digest-1", rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, ok, _ := s.Get("digest-1"); !ok {
		t.Fatal("record should be visible before TTL")
	}

	time.Sleep(40 * time.Millisecond)
	if _, ok, _ := s.Get("digest-1"); ok {
		t.Error("record should have expired")
	}
}

func TestMemoryStoreExpiredSlotIsReusable(t *testing.T) {
	s := NewMemoryStore(20*time.Millisecond, time.Hour, 1000)
	defer s.Close()

	old := VerificationRecord{ActionType: "email-contact", VerifiedAt: time.Now()}
	if _, inserted, _ := s.PutIfAbsent("digest-1", old); !inserted {
		t.Fatal("first insert must win")
	}
	time.Sleep(40 * time.Millisecond)

	fresh := VerificationRecord{ActionType: "newsletter", VerifiedAt: time.Now()}
	got, inserted, err := s.PutIfAbsent("digest-1", fresh)
	if err != nil {
		t.Fatalf("reinsert: %v", err)
	}
	if !inserted || got.ActionType != "newsletter" {
		t.Errorf("expired slot should be overwritable: inserted=%v action=%q", inserted, got.ActionType)
	}
}

func TestMemoryStoreEagerSweepAtCapacity(t *testing.T) {
	// Sweep interval far in the future so only the size-triggered sweep runs.
	s := NewMemoryStore(20*time.Millisecond, time.Hour, 10)
	defer s.Close()

	for i := 0; i < 10; i++ {
		rec := VerificationRecord{ActionType: "email-contact", VerifiedAt: time.Now()}
		if _, inserted, _ := s.PutIfAbsent(fmt.Sprintf("digest-%d", i), rec); !inserted {
			t.Fatalf("insert %d must win", i)
		}
	}
	time.Sleep(40 * time.Millisecond)

	// Crossing the bound with everything expired must shrink the table.
	rec := VerificationRecord{ActionType: "email-contact", VerifiedAt: time.Now()}
	if _, inserted, _ := s.PutIfAbsent("digest-new", rec); !inserted {
		t.Fatal("insert after sweep must win")
	}
	n, err := s.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 1 {
		t.Errorf("entries after eager sweep = %d, want 1", n)
	}
}

func TestMemoryStoreCloseIdempotent(t *testing.T) {
	s := NewMemoryStore(time.Minute, time.Hour, 10)
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestVerificationRecordActionKey(t *testing.T) {
	a := VerificationRecord{ActionType: "email-contact", ActionID: "1"}
	b := VerificationRecord{ActionType: "email-contact", ActionID: "1"}
	c := VerificationRecord{ActionType: "email-contact", ActionID: "2"}
	d := VerificationRecord{ActionType: "email", ActionID: "contact-1"}

	if a.ActionKey() != b.ActionKey() {
		t.Error("identical pairs must share a key")
	}
	if a.ActionKey() == c.ActionKey() {
		t.Error("different action ids must not share a key")
	}
	if a.ActionKey() == d.ActionKey() {
		t.Error("key must not be ambiguous under concatenation")
	}
}
