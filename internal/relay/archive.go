package relay

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/bidngo-client/internal/stream"
)

// PostgresArchive appends every bid event to the bid_events table.
type PostgresArchive struct {
	db *sql.DB
}

func NewPostgresArchive(dsn string) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresArchive{db: db}, nil
}

func (p *PostgresArchive) Archive(ctx context.Context, ev stream.Event) error {
	_, value, err := EncodeEvent(ev)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO bid_events(event_type, trip_id, bid_id, payload, received_at) VALUES($1,$2,$3,$4,$5)`,
		ev.Type, ev.TripID, ev.BidID, value, time.Now())
	return err
}

func (p *PostgresArchive) Close() error { return p.db.Close() }

// MemoryArchive collects events in memory, used by tests.
type MemoryArchive struct {
	mu     sync.Mutex
	events []stream.Event
}

func NewMemoryArchive() *MemoryArchive { return &MemoryArchive{} }

func (m *MemoryArchive) Archive(ctx context.Context, ev stream.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *MemoryArchive) Events() []stream.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]stream.Event, len(m.events))
	copy(out, m.events)
	return out
}
