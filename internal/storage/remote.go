package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nikbrunner/pile/internal/config"
)

const (
	currentSchemaVersion = 1
	schemaVersionTable   = "pile_schema_version"

	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var bookmarkColumns = []string{"id", "url", "title", "description", "tags", "created_at", "is_read"}

// RemoteStorage implements Adapter on a SQL table.
// Postgres is the hosted target; a sqlite:// URL gives the same table
// in a local database file.
type RemoteStorage struct {
	db     *sql.DB
	driver string
	table  string
	logger *zap.Logger
}

// OpenRemote connects to the database named by cfg and migrates it.
func OpenRemote(ctx context.Context, cfg config.RemoteConfig, logger *zap.Logger) (*RemoteStorage, error) {
	driver, dsn, err := parseRemoteURL(cfg.URL, cfg.Key)
	if err != nil {
		return nil, err
	}

	if driver == driverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s, err := NewRemoteStorage(ctx, db, driver, cfg.Table, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewRemoteStorage wraps an open database. driver is "postgres" or "sqlite".
func NewRemoteStorage(ctx context.Context, db *sql.DB, driver, table string, logger *zap.Logger) (*RemoteStorage, error) {
	if table == "" {
		table = "bookmarks"
	}
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if driver == driverSQLite {
		// Pragmas for a single-writer file database
		pragmas := []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA busy_timeout = 5000",
		}
		for _, pragma := range pragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				return nil, err
			}
		}
	}

	s := &RemoteStorage{db: db, driver: driver, table: table, logger: logger}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Kind implements Adapter.
func (s *RemoteStorage) Kind() Kind { return KindRemote }

// Close closes the database connection.
func (s *RemoteStorage) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders for the driver in use.
func (s *RemoteStorage) rebind(query string) string {
	return sqlx.Rebind(sqlx.BindType(s.driver), query)
}

// migrate runs database migrations.
func (s *RemoteStorage) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS "+schemaVersionTable+" (version INTEGER PRIMARY KEY)"); err != nil {
		return err
	}

	var version int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM "+schemaVersionTable).Scan(&version)
	if err != nil {
		return err
	}

	if version < 1 {
		if err := s.migrateV1(ctx); err != nil {
			return err
		}
	}
	return nil
}

// migrateV1 creates the bookmarks table.
func (s *RemoteStorage) migrateV1(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY NOT NULL,
			url TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			created_at BIGINT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE
		)`, s.table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s(created_at)", s.table, s.table),
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	sqlStr, args, err := builder.BuildInsert(schemaVersionTable, []map[string]interface{}{
		{"version": currentSchemaVersion},
	})
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(sqlStr), args...)
	return err
}

// GetAll selects every row ordered by created_at descending.
func (s *RemoteStorage) GetAll(ctx context.Context) ([]Record, error) {
	where := map[string]interface{}{"_orderby": "created_at desc"}
	sqlStr, args, err := builder.BuildSelect(s.table, where, bookmarkColumns)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(sqlStr), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Insert writes one row and reads it back.
func (s *RemoteStorage) Insert(ctx context.Context, rec Record) (Record, error) {
	tagsJSON, err := json.Marshal(nonNilTags(rec.Tags))
	if err != nil {
		return Record{}, err
	}
	isRead := false
	if rec.IsRead != nil {
		isRead = *rec.IsRead
	}

	data := map[string]interface{}{
		"id":          rec.ID,
		"url":         rec.URL,
		"title":       rec.Title,
		"description": rec.Description,
		"tags":        string(tagsJSON),
		"created_at":  rec.CreatedAt,
		"is_read":     isRead,
	}
	sqlStr, args, err := builder.BuildInsert(s.table, []map[string]interface{}{data})
	if err != nil {
		return Record{}, err
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(sqlStr), args...); err != nil {
		return Record{}, err
	}

	return s.get(ctx, rec.ID)
}

func (s *RemoteStorage) get(ctx context.Context, id string) (Record, error) {
	sqlStr, args, err := builder.BuildSelect(s.table, map[string]interface{}{"id": id}, bookmarkColumns)
	if err != nil {
		return Record{}, err
	}
	row := s.db.QueryRowContext(ctx, s.rebind(sqlStr), args...)
	return s.scan(row)
}

// UpdateReadStatus implements Adapter.
func (s *RemoteStorage) UpdateReadStatus(ctx context.Context, id string, isRead bool) error {
	sqlStr, args, err := builder.BuildUpdate(s.table,
		map[string]interface{}{"id": id},
		map[string]interface{}{"is_read": isRead},
	)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, s.rebind(sqlStr), args...)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		s.logger.Debug("read status update matched no rows", zap.String("id", id))
	}
	return nil
}

// Delete implements Adapter.
func (s *RemoteStorage) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := builder.BuildDelete(s.table, map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(sqlStr), args...)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *RemoteStorage) scan(row scanner) (Record, error) {
	var (
		rec         Record
		title       sql.NullString
		description sql.NullString
		tags        sql.NullString
		createdAt   any
		isRead      sql.NullBool
	)
	if err := row.Scan(&rec.ID, &rec.URL, &title, &description, &tags, &createdAt, &isRead); err != nil {
		return Record{}, err
	}

	rec.Title = title.String
	rec.Description = description.String
	if tags.Valid {
		parsed, err := decodeTags(tags.String)
		if err != nil {
			s.logger.Warn("unreadable tags column", zap.String("id", rec.ID), zap.Error(err))
		}
		rec.Tags = parsed
	}
	if b, ok := createdAt.([]byte); ok {
		createdAt = string(b)
	}
	rec.CreatedAt = createdAt
	if isRead.Valid {
		rec.IsRead = boolPtr(isRead.Bool)
	}
	return rec, nil
}

// decodeTags reads the tags column, stored as a JSON array. Tables
// created elsewhere may hold a postgres text[] literal instead.
func decodeTags(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return nil, nil
	case strings.HasPrefix(raw, "["):
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return nil, err
		}
		return tags, nil
	case strings.HasPrefix(raw, "{"):
		var arr pq.StringArray
		if err := arr.Scan(raw); err != nil {
			return nil, err
		}
		return []string(arr), nil
	default:
		return nil, fmt.Errorf("unrecognised tags value %q", raw)
	}
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// parseRemoteURL maps the configured URL to a driver and DSN. The key is
// used as the postgres password; sqlite ignores it.
func parseRemoteURL(raw, key string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "sqlite://"):
		return driverSQLite, strings.TrimPrefix(raw, "sqlite://"), nil
	case strings.HasPrefix(raw, "sqlite:"):
		return driverSQLite, strings.TrimPrefix(raw, "sqlite:"), nil
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		u, err := url.Parse(raw)
		if err != nil {
			return "", "", fmt.Errorf("parse remote url: %w", err)
		}
		user := "postgres"
		if u.User != nil && u.User.Username() != "" {
			user = u.User.Username()
		}
		u.User = url.UserPassword(user, key)
		return driverPostgres, u.String(), nil
	case strings.Contains(raw, "="):
		return driverPostgres, raw + " password=" + quoteDSNValue(key), nil
	default:
		return "", "", errors.New("remote url must start with postgres:// or sqlite://")
	}
}

func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
