package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/confstack/confstack/internal/platform/logger"
	"github.com/confstack/confstack/internal/redact"
	"github.com/confstack/confstack/internal/setting"
	"github.com/confstack/confstack/internal/store"
)

// uniqueViolationCode is the PostgreSQL error code for unique constraint
// violations, used to retry upserts that race on (namespace, name).
const uniqueViolationCode = "23505"

// SettingsStore implements store.Manager against the settings table. One
// instance is scoped to a single service namespace. In bulk mode the whole
// namespace is loaded once and lookups are served from that snapshot.
type SettingsStore struct {
	db        store.DBTX
	namespace string
	bulk      bool
	cache     map[string]any
}

// NewSettingsStore creates a database-backed settings manager for the given
// namespace. The db handle should be initialized and managed by the caller.
func NewSettingsStore(db store.DBTX, namespace string, bulk bool) *SettingsStore {
	return &SettingsStore{
		db:        db,
		namespace: namespace,
		bulk:      bulk,
	}
}

// Ensure SettingsStore implements the store.Manager interface.
var _ store.Manager = (*SettingsStore)(nil)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// wrapError wraps a driver error with operation context, scrubbing anything
// that looks like credentials out of the driver message first.
func wrapError(operation string, err error) error {
	return store.NewStoreError("database", operation, redact.Error(err), nil)
}

func (s *SettingsStore) load(ctx context.Context) (map[string]any, error) {
	if s.cache != nil {
		return s.cache, nil
	}

	query := `
		SELECT name, value
		FROM settings
		WHERE namespace = $1 AND enabled
	`

	rows, err := s.db.QueryContext(ctx, query, s.namespace)
	if err != nil {
		return nil, wrapError("load", err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[string]any)
	for rows.Next() {
		var name string
		var raw []byte
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, wrapError("load", err)
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("decoding stored setting %q: %w", name, err)
		}
		values[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("load", err)
	}

	if s.bulk {
		s.cache = values
	}
	return values, nil
}

// Get implements store.Manager.Get.
func (s *SettingsStore) Get(ctx context.Context, name string, def *setting.Definition, _ map[string]string) (any, bool, store.Metadata, error) {
	keys := []string{name}
	if def != nil {
		keys = def.Keys()
	}

	if s.bulk {
		values, err := s.load(ctx)
		if err != nil {
			return nil, false, store.Metadata{}, err
		}
		for _, key := range keys {
			if value, ok := values[key]; ok {
				return value, true, store.Metadata{Source: store.Database}, nil
			}
		}
		return nil, false, store.Metadata{}, nil
	}

	query := `
		SELECT value
		FROM settings
		WHERE namespace = $1 AND name = $2 AND enabled
	`

	for _, key := range keys {
		var raw []byte
		err := s.db.QueryRowContext(ctx, query, s.namespace, key).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, false, store.Metadata{}, wrapError("get", err)
		}

		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, false, store.Metadata{}, fmt.Errorf("decoding stored setting %q: %w", key, err)
		}
		return value, true, store.Metadata{Source: store.Database}, nil
	}

	return nil, false, store.Metadata{}, nil
}

// Set implements store.Manager.Set. The value is stored JSON-encoded under
// the canonical name; rows for stale aliases are removed.
func (s *SettingsStore) Set(ctx context.Context, name string, _ []string, value any, def *setting.Definition) (store.Metadata, error) {
	log := logger.FromContext(ctx)

	raw, err := json.Marshal(value)
	if err != nil {
		return store.Metadata{}, fmt.Errorf("encoding setting %q: %w", name, err)
	}

	query := `
		INSERT INTO settings (id, namespace, name, value, enabled, last_updated)
		VALUES ($1, $2, $3, $4, TRUE, $5)
		ON CONFLICT (namespace, name)
		DO UPDATE SET value = EXCLUDED.value, enabled = TRUE, last_updated = EXCLUDED.last_updated
	`

	_, err = s.db.ExecContext(ctx, query, uuid.New(), s.namespace, name, raw, time.Now().UTC())
	if err != nil && isUniqueViolation(err) {
		// Lost an insert race; the conflict target now exists, retry once.
		_, err = s.db.ExecContext(ctx, query, uuid.New(), s.namespace, name, raw, time.Now().UTC())
	}
	if err != nil {
		log.Error("failed to persist setting",
			"namespace", s.namespace,
			"setting", name,
			"error", redact.Error(err))
		return store.Metadata{}, wrapError("set", err)
	}

	if def != nil {
		for _, alias := range def.Keys()[1:] {
			if err := s.deleteRow(ctx, alias); err != nil {
				return store.Metadata{}, err
			}
		}
	}

	s.cache = nil
	return store.Metadata{Store: store.Database}, nil
}

// Unset implements store.Manager.Unset, removing the canonical row and any
// alias rows.
func (s *SettingsStore) Unset(ctx context.Context, name string, _ []string, def *setting.Definition) (store.Metadata, error) {
	keys := []string{name}
	if def != nil {
		keys = def.Keys()
	}

	for _, key := range keys {
		if err := s.deleteRow(ctx, key); err != nil {
			return store.Metadata{}, err
		}
	}

	s.cache = nil
	return store.Metadata{Store: store.Database}, nil
}

// Reset implements store.Manager.Reset, removing every row owned by this
// manager's namespace.
func (s *SettingsStore) Reset(ctx context.Context) (store.Metadata, error) {
	query := `DELETE FROM settings WHERE namespace = $1`

	if _, err := s.db.ExecContext(ctx, query, s.namespace); err != nil {
		return store.Metadata{}, wrapError("reset", err)
	}

	s.cache = nil
	return store.Metadata{Store: store.Database}, nil
}

func (s *SettingsStore) deleteRow(ctx context.Context, name string) error {
	query := `DELETE FROM settings WHERE namespace = $1 AND name = $2`

	if _, err := s.db.ExecContext(ctx, query, s.namespace, name); err != nil {
		return wrapError("unset", err)
	}
	return nil
}
