package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS contents (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content_type TEXT NOT NULL,
	language TEXT NOT NULL,
	topic TEXT NOT NULL DEFAULT '',
	script TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'draft',
	pipeline_stage TEXT NOT NULL DEFAULT 'pending',
	cost_usd REAL NOT NULL DEFAULT 0,
	publish_url TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schedules (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	content_type TEXT NOT NULL,
	topic_template TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL,
	cron_expression TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	last_run_at INTEGER
);
`

// SQLiteStore provides SQLite-backed persistence for content records and
// schedules.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// Compile-time interface assertion.
var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (and migrates) a SQLite store at the provided path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// DB returns the underlying sql.DB instance.
func (s *SQLiteStore) DB() *sql.DB { return s.sqlDB }

// Close closes the underlying SQLite database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateContent inserts a content record.
func (s *SQLiteStore) CreateContent(ctx context.Context, c *Content) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO contents
			(id, title, content_type, language, topic, script, status,
			 pipeline_stage, cost_usd, publish_url, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.ContentType, c.Language, c.Topic, c.Script, c.Status,
		c.PipelineStage, c.CostUSD, c.PublishURL, c.ErrorMessage,
		toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert content: %w", err)
	}
	return nil
}

func scanContent(row interface{ Scan(...any) error }) (*Content, error) {
	var c Content
	var createdAt, updatedAt int64
	err := row.Scan(&c.ID, &c.Title, &c.ContentType, &c.Language, &c.Topic,
		&c.Script, &c.Status, &c.PipelineStage, &c.CostUSD, &c.PublishURL,
		&c.ErrorMessage, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}

const contentColumns = `id, title, content_type, language, topic, script, status,
	pipeline_stage, cost_usd, publish_url, error_message, created_at, updated_at`

// GetContent fetches one content record or ErrNotFound.
func (s *SQLiteStore) GetContent(ctx context.Context, id string) (*Content, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE id = ?`, id)
	c, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select content: %w", err)
	}
	return c, nil
}

// ListContents returns matching content records, newest first.
func (s *SQLiteStore) ListContents(ctx context.Context, filter ContentFilter) ([]*Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents`
	var clauses []string
	var args []any
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.ContentType != "" {
		clauses = append(clauses, "content_type = ?")
		args = append(args, filter.ContentType)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	defer rows.Close()

	var out []*Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateContent overwrites an existing content record, bumping UpdatedAt.
func (s *SQLiteStore) UpdateContent(ctx context.Context, c *Content) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := s.sqlDB.ExecContext(ctx, `
		UPDATE contents SET title = ?, content_type = ?, language = ?, topic = ?,
			script = ?, status = ?, pipeline_stage = ?, cost_usd = ?,
			publish_url = ?, error_message = ?, updated_at = ?
		WHERE id = ?`,
		c.Title, c.ContentType, c.Language, c.Topic, c.Script, c.Status,
		c.PipelineStage, c.CostUSD, c.PublishURL, c.ErrorMessage,
		toMillis(c.UpdatedAt), c.ID,
	)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update content rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateSchedule inserts a schedule.
func (s *SQLiteStore) CreateSchedule(ctx context.Context, sched *Schedule) error {
	var lastRun any
	if sched.LastRunAt != nil {
		lastRun = toMillis(*sched.LastRunAt)
	}
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO schedules
			(id, name, content_type, topic_template, language, cron_expression, is_active, last_run_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sched.ID, sched.Name, sched.ContentType, sched.TopicTemplate,
		sched.Language, sched.CronExpr, boolToInt(sched.Active), lastRun,
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func scanSchedule(row interface{ Scan(...any) error }) (*Schedule, error) {
	var sched Schedule
	var active int
	var lastRun sql.NullInt64
	err := row.Scan(&sched.ID, &sched.Name, &sched.ContentType, &sched.TopicTemplate,
		&sched.Language, &sched.CronExpr, &active, &lastRun)
	if err != nil {
		return nil, err
	}
	sched.Active = active != 0
	if lastRun.Valid {
		t := fromMillis(lastRun.Int64)
		sched.LastRunAt = &t
	}
	return &sched, nil
}

const scheduleColumns = `id, name, content_type, topic_template, language,
	cron_expression, is_active, last_run_at`

// GetSchedule fetches one schedule or ErrNotFound.
func (s *SQLiteStore) GetSchedule(ctx context.Context, id string) (*Schedule, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	sched, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select schedule: %w", err)
	}
	return sched, nil
}

// ListSchedules returns schedules ordered by name.
func (s *SQLiteStore) ListSchedules(ctx context.Context, activeOnly bool) ([]*Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules`
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name"

	rows, err := s.sqlDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var out []*Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, sched)
	}
	return out, rows.Err()
}

// UpdateSchedule overwrites an existing schedule.
func (s *SQLiteStore) UpdateSchedule(ctx context.Context, sched *Schedule) error {
	var lastRun any
	if sched.LastRunAt != nil {
		lastRun = toMillis(*sched.LastRunAt)
	}
	res, err := s.sqlDB.ExecContext(ctx, `
		UPDATE schedules SET name = ?, content_type = ?, topic_template = ?,
			language = ?, cron_expression = ?, is_active = ?, last_run_at = ?
		WHERE id = ?`,
		sched.Name, sched.ContentType, sched.TopicTemplate, sched.Language,
		sched.CronExpr, boolToInt(sched.Active), lastRun, sched.ID,
	)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update schedule rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSchedule removes a schedule or returns ErrNotFound.
func (s *SQLiteStore) DeleteSchedule(ctx context.Context, id string) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete schedule rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
