package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/core/domain"
)

type memAudit struct {
	mu        sync.Mutex
	events    []domain.AccountEvent
	failFirst int
}

func (m *memAudit) InsertEvent(_ context.Context, e *domain.AccountEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFirst > 0 {
		m.failFirst--
		return errors.New("mongo down")
	}
	m.events = append(m.events, *e)
	return nil
}

func (m *memAudit) snapshot() []domain.AccountEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AccountEvent(nil), m.events...)
}

func TestAuditDispatcher_WritesInOrderPerAccount(t *testing.T) {
	repo := &memAudit{}
	d := NewAuditDispatcher(3, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	types := []domain.EventType{domain.EventRegistered, domain.EventCodeRenewed, domain.EventActivated}
	for _, typ := range types {
		d.Record(domain.AccountEvent{AccountID: "a1", Email: "ana@example.com", Type: typ})
	}

	cancel()
	d.Wait()

	got := repo.snapshot()
	if len(got) != len(types) {
		t.Fatalf("expected %d events, got %d", len(types), len(got))
	}
	for i, e := range got {
		if e.Type != types[i] {
			t.Errorf("event %d: expected %s, got %s", i, types[i], e.Type)
		}
		if e.ID == "" {
			t.Errorf("event %d: expected generated id", i)
		}
		if e.OccurredAt.IsZero() {
			t.Errorf("event %d: expected timestamp", i)
		}
	}
}

func TestAuditDispatcher_DropsWhenFull(t *testing.T) {
	repo := &memAudit{}
	d := NewAuditDispatcher(1, repo, zerolog.Nop())

	// not started: the shard only fills up
	for i := 0; i < channelBuffer+10; i++ {
		d.Record(domain.AccountEvent{Email: "ana@example.com", Type: domain.EventRegistered})
	}
	if n := len(d.workers[0]); n != channelBuffer {
		t.Errorf("expected full shard of %d, got %d", channelBuffer, n)
	}
}

func TestAuditDispatcher_WriteFailureDoesNotStopWorker(t *testing.T) {
	repo := &memAudit{failFirst: 1}
	d := NewAuditDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Record(domain.AccountEvent{Email: "ana@example.com", Type: domain.EventDeleted})
	d.Record(domain.AccountEvent{Email: "ana@example.com", Type: domain.EventRegistered})
	cancel()
	d.Wait()

	got := repo.snapshot()
	if len(got) != 1 || got[0].Type != domain.EventRegistered {
		t.Fatalf("expected only the second event to be written, got %+v", got)
	}
}

func TestShardIndex_Deterministic(t *testing.T) {
	d := NewAuditDispatcher(8, &memAudit{}, zerolog.Nop())
	for _, email := range []string{"a@x.io", "b@x.io", "ana@example.com"} {
		first := d.shardIndex(email)
		for i := 0; i < 5; i++ {
			if d.shardIndex(email) != first {
				t.Fatalf("shard for %s changed", email)
			}
		}
		if first < 0 || first >= 8 {
			t.Fatalf("shard out of range: %d", first)
		}
	}
}

func TestNewAuditDispatcher_DefaultWorkers(t *testing.T) {
	d := NewAuditDispatcher(0, &memAudit{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Errorf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
