package checkpoint

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
)

//go:embed schema.sql
var schemaDDL string

// RelationalStore is the "SQLite-like" backend: pages, queue and metadata
// live in separate tables so a commit only touches the rows that changed,
// instead of rewriting a full snapshot. Backed by DuckDB, the only
// embeddable SQL engine in reach that needs no external server.
type RelationalStore struct {
	db *sql.DB
}

func newRelationalStore(path string) (*RelationalStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open duckdb at %s: %w", path, err)
	}
	return &RelationalStore{db: db}, nil
}

func (s *RelationalStore) Initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("checkpoint: apply schema: %w", err)
	}
	return nil
}

func (s *RelationalStore) SaveMetadata(ctx context.Context, m Metadata) error {
	statsJSON, err := json.Marshal(m.Stats)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal stats: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO metadata (id, version, config_name, config_hash, created_at, last_updated, stats_json)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			version = excluded.version,
			config_name = excluded.config_name,
			config_hash = excluded.config_hash,
			created_at = excluded.created_at,
			last_updated = excluded.last_updated,
			stats_json = excluded.stats_json
	`, m.Version, m.ConfigName, m.ConfigHash, m.CreatedAt, m.LastUpdated, string(statsJSON))
	if err != nil {
		return fmt.Errorf("checkpoint: save metadata: %w", err)
	}
	return nil
}

func (s *RelationalStore) LoadMetadata(ctx context.Context) (Metadata, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT version, config_name, config_hash, created_at, last_updated, stats_json
		FROM metadata WHERE id = 1
	`)

	var m Metadata
	var statsJSON string
	if err := row.Scan(&m.Version, &m.ConfigName, &m.ConfigHash, &m.CreatedAt, &m.LastUpdated, &statsJSON); err != nil {
		if err == sql.ErrNoRows {
			return Metadata{}, false, nil
		}
		return Metadata{}, false, fmt.Errorf("checkpoint: load metadata: %w", err)
	}

	if err := json.Unmarshal([]byte(statsJSON), &m.Stats); err != nil {
		return Metadata{}, false, fmt.Errorf("checkpoint: unmarshal stats: %w", err)
	}
	return m, true, nil
}

func (s *RelationalStore) AddPage(ctx context.Context, p PageCheckpoint) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (url, content_hash, last_scraped, status_code, file_path)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			content_hash = excluded.content_hash,
			last_scraped = excluded.last_scraped,
			status_code = excluded.status_code,
			file_path = excluded.file_path
	`, p.URL, p.ContentHash, p.LastScraped, p.StatusCode, p.FilePath)
	if err != nil {
		return fmt.Errorf("checkpoint: add page: %w", err)
	}
	return nil
}

func (s *RelationalStore) GetPage(ctx context.Context, url string) (PageCheckpoint, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT url, content_hash, last_scraped, status_code, file_path FROM pages WHERE url = ?
	`, url)

	var p PageCheckpoint
	if err := row.Scan(&p.URL, &p.ContentHash, &p.LastScraped, &p.StatusCode, &p.FilePath); err != nil {
		if err == sql.ErrNoRows {
			return PageCheckpoint{}, false, nil
		}
		return PageCheckpoint{}, false, fmt.Errorf("checkpoint: get page: %w", err)
	}
	return p, true, nil
}

func (s *RelationalStore) HasPage(ctx context.Context, url string) (bool, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE url = ?`, url)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("checkpoint: has page: %w", err)
	}
	return count > 0, nil
}

func (s *RelationalStore) GetPageCount(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("checkpoint: page count: %w", err)
	}
	return count, nil
}

// IterPages streams rows lazily through a channel fed by a background
// goroutine, so a caller processing ≥10^5 pages never loads them all at once.
func (s *RelationalStore) IterPages(ctx context.Context) (<-chan PageCheckpoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url, content_hash, last_scraped, status_code, file_path FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: iter pages: %w", err)
	}

	ch := make(chan PageCheckpoint)
	go func() {
		defer close(ch)
		defer rows.Close()
		for rows.Next() {
			var p PageCheckpoint
			if err := rows.Scan(&p.URL, &p.ContentHash, &p.LastScraped, &p.StatusCode, &p.FilePath); err != nil {
				return
			}
			select {
			case ch <- p:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (s *RelationalStore) SaveQueue(ctx context.Context, items []QueueItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("checkpoint: save queue: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM queue`); err != nil {
		return fmt.Errorf("checkpoint: clear queue: %w", err)
	}
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `INSERT INTO queue (url, referrer, depth, position) VALUES (?, ?, ?, ?)`,
			item.URL, item.Referrer, item.Depth, item.Position); err != nil {
			return fmt.Errorf("checkpoint: insert queue item: %w", err)
		}
	}
	return tx.Commit()
}

func (s *RelationalStore) GetQueue(ctx context.Context) ([]QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url, referrer, depth, position FROM queue ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: get queue: %w", err)
	}
	defer rows.Close()

	var items []QueueItem
	for rows.Next() {
		var item QueueItem
		if err := rows.Scan(&item.URL, &item.Referrer, &item.Depth, &item.Position); err != nil {
			return nil, fmt.Errorf("checkpoint: scan queue item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Commit is a no-op beyond what each statement already did: every write
// above executes (and, for SaveQueue, transacts) immediately, so there is no
// buffered state to flush. It exists to satisfy Store's contract with the
// JSON backend, where commit timing matters a great deal more.
func (s *RelationalStore) Commit(ctx context.Context) error {
	return nil
}

func (s *RelationalStore) Close() error {
	return s.db.Close()
}
