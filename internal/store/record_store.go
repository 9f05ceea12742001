package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrInvalidSort = errors.New("invalid sort expression")
)

const (
	defaultPerPage = 30
	maxPerPage     = 500
)

// Record is a schemaless row in a named collection.
type Record struct {
	ID         string
	Collection string
	Data       map[string]any
	Created    string
	Updated    string
}

type RecordStore struct {
	db *sql.DB
}

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

// NewID returns a 15 character lowercase id in the backend's id alphabet.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:15]
}

func (s *RecordStore) Create(ctx context.Context, collection string, data map[string]any) (*Record, error) {
	return s.CreateWithID(ctx, collection, NewID(), data)
}

// CreateWithID inserts a record with a caller-chosen id, used by seeding.
func (s *RecordStore) CreateWithID(ctx context.Context, collection, id string, data map[string]any) (*Record, error) {
	payload, err := encodeData(data)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO records (id, collection, data) VALUES (?, ?, ?)
	`, id, collection, payload); err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	return s.GetByID(ctx, collection, id)
}

// GetByID returns nil, nil when the record does not exist.
func (s *RecordStore) GetByID(ctx context.Context, collection, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, collection, data, created_at, updated_at FROM records
		WHERE collection = ? AND id = ?
	`, collection, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// List returns one page of collection ordered by sort (backend syntax, e.g.
// "-created,title") together with the collection's total size.
func (s *RecordStore) List(ctx context.Context, collection string, page, perPage int, sort string) ([]*Record, int, error) {
	orderBy, err := parseSort(sort)
	if err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM records WHERE collection = ?
	`, collection).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}

	// orderBy is built only from whitelisted identifiers.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collection, data, created_at, updated_at FROM records
		WHERE collection = ?
		ORDER BY `+orderBy+`
		LIMIT ? OFFSET ?
	`, collection, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating records: %w", err)
	}

	return records, total, nil
}

// Update merges patch into the stored fields. Keys mapped to nil are removed.
func (s *RecordStore) Update(ctx context.Context, collection, id string, patch map[string]any) (*Record, error) {
	rec, err := s.GetByID(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	for k, v := range patch {
		if v == nil {
			delete(rec.Data, k)
			continue
		}
		rec.Data[k] = v
	}
	payload, err := encodeData(rec.Data)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE records SET data = ?, updated_at = strftime('%Y-%m-%d %H:%M:%fZ', 'now')
		WHERE collection = ? AND id = ?
	`, payload, collection, id); err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	return s.GetByID(ctx, collection, id)
}

func (s *RecordStore) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM records WHERE collection = ? AND id = ?
	`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	rec := &Record{}
	var data string
	if err := sc.Scan(&rec.ID, &rec.Collection, &data, &rec.Created, &rec.Updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", rec.ID, err)
	}
	if rec.Data == nil {
		rec.Data = map[string]any{}
	}
	return rec, nil
}

func encodeData(data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode record data: %w", err)
	}
	return string(payload), nil
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// parseSort turns "-created,title" into an ORDER BY clause. Field names are
// validated so the result is safe to splice into SQL.
func parseSort(sort string) (string, error) {
	var terms []string
	for _, part := range strings.Split(sort, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dir := "ASC"
		switch part[0] {
		case '-':
			dir = "DESC"
			part = part[1:]
		case '+':
			part = part[1:]
		}
		if !fieldName.MatchString(part) {
			return "", fmt.Errorf("%w: %q", ErrInvalidSort, part)
		}
		terms = append(terms, column(part)+" "+dir)
	}
	terms = append(terms, "rowid ASC")
	return strings.Join(terms, ", "), nil
}

func column(field string) string {
	switch field {
	case "id":
		return "id"
	case "created":
		return "created_at"
	case "updated":
		return "updated_at"
	default:
		return "json_extract(data, '$." + field + "')"
	}
}
