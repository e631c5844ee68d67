package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
)

const memoryDialogLogCap = 2048

// dialogMessage one logged inbound or outbound chat line.
type dialogMessage struct {
	ID        string
	UserID    int64
	ChatID    int64
	Username  string
	Direction string // "in" | "out"
	Text      string
	CreatedAt time.Time
}

// viewingRequest a captured lead: contact plus the filters and listings
// it was left for.
type viewingRequest struct {
	ID         string
	UserID     int64
	Username   string
	Name       string
	Phone      string
	ListingIDs []int
	Filters    entity.FilterSet
	CreatedAt  time.Time
}

// DialogStore persists the conversation trail. The memory variant backs
// development and tests; postgres is used whenever a DSN is configured.
type DialogStore interface {
	SaveMessage(ctx context.Context, msg dialogMessage) error
	SaveFilterSnapshot(ctx context.Context, userID int64, filters entity.FilterSet) error
	SaveViewingRequest(ctx context.Context, req viewingRequest) error
	Close() error
}

// NewDialogStore selects the backend by DSN presence.
func NewDialogStore(dsn string) (DialogStore, error) {
	if dsn == "" {
		return newMemoryDialogStore(), nil
	}
	return newPostgresDialogStore(dsn)
}

type memoryDialogStore struct {
	mu       sync.Mutex
	messages []dialogMessage
	viewings []viewingRequest
}

func newMemoryDialogStore() *memoryDialogStore {
	return &memoryDialogStore{messages: make([]dialogMessage, 0, 256)}
}

func (m *memoryDialogStore) SaveMessage(_ context.Context, msg dialogMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	m.messages = append(m.messages, msg)
	if len(m.messages) > memoryDialogLogCap {
		m.messages = m.messages[len(m.messages)-memoryDialogLogCap:]
	}
	return nil
}

func (m *memoryDialogStore) SaveFilterSnapshot(_ context.Context, _ int64, _ entity.FilterSet) error {
	return nil
}

func (m *memoryDialogStore) SaveViewingRequest(_ context.Context, req viewingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	m.viewings = append(m.viewings, req)
	return nil
}

func (m *memoryDialogStore) Close() error { return nil }

type postgresDialogStore struct {
	db *sql.DB
}

func newPostgresDialogStore(dsn string) (*postgresDialogStore, error) {
	db, err := openPostgresWithRetry(dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	schema := `
CREATE TABLE IF NOT EXISTS dialog_messages (
	id UUID PRIMARY KEY,
	user_id BIGINT NOT NULL,
	chat_id BIGINT NOT NULL,
	username TEXT,
	direction TEXT NOT NULL,
	text TEXT,
	created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_dialog_messages_user_time ON dialog_messages (user_id, created_at DESC);
CREATE TABLE IF NOT EXISTS filter_snapshots (
	id UUID PRIMARY KEY,
	user_id BIGINT NOT NULL,
	filters JSONB NOT NULL,
	created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_filter_snapshots_user_time ON filter_snapshots (user_id, created_at DESC);
CREATE TABLE IF NOT EXISTS viewing_requests (
	id UUID PRIMARY KEY,
	user_id BIGINT NOT NULL,
	username TEXT,
	name TEXT,
	phone TEXT NOT NULL,
	listing_ids JSONB,
	filters JSONB,
	created_at TIMESTAMPTZ DEFAULT NOW()
);
`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create dialog tables: %w", err)
	}

	return &postgresDialogStore{db: db}, nil
}

func (p *postgresDialogStore) SaveMessage(ctx context.Context, msg dialogMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO dialog_messages (id, user_id, chat_id, username, direction, text)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ID, msg.UserID, msg.ChatID, msg.Username, msg.Direction, msg.Text)
	if err != nil {
		return fmt.Errorf("save dialog message: %w", err)
	}
	return nil
}

func (p *postgresDialogStore) SaveFilterSnapshot(ctx context.Context, userID int64, filters entity.FilterSet) error {
	payload, err := json.Marshal(filters.APIPayload())
	if err != nil {
		return fmt.Errorf("marshal filter snapshot: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO filter_snapshots (id, user_id, filters)
		VALUES ($1, $2, $3)`,
		uuid.NewString(), userID, payload)
	if err != nil {
		return fmt.Errorf("save filter snapshot: %w", err)
	}
	return nil
}

func (p *postgresDialogStore) SaveViewingRequest(ctx context.Context, req viewingRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	listings, err := json.Marshal(req.ListingIDs)
	if err != nil {
		return fmt.Errorf("marshal listing ids: %w", err)
	}
	filters, err := json.Marshal(req.Filters.APIPayload())
	if err != nil {
		return fmt.Errorf("marshal filters: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO viewing_requests (id, user_id, username, name, phone, listing_ids, filters)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		req.ID, req.UserID, req.Username, req.Name, req.Phone, listings, filters)
	if err != nil {
		return fmt.Errorf("save viewing request: %w", err)
	}
	return nil
}

func (p *postgresDialogStore) Close() error { return p.db.Close() }
