// Package database provides SQLite-backed storage for discovered accounts
// and their bot-detection results.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nobushige/botscan/internal/model"
)

// BotDB provides SQLite-based storage for discovered users and detection
// results. It manages connection pooling and provides methods for CRUD
// operations.
//
// Design decision: one database file holds both the users table and the
// detection results so the unanalyzed-handles query is a single left join
// and backup/restore is one file copy.
type BotDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures BotDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a BotDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*BotDB, error) {
	dbPath := filepath.Join(dbDir, "botscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	bdb := &BotDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := bdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return bdb, nil
}

// Close closes the database connection.
func (bdb *BotDB) Close() error {
	return bdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (bdb *BotDB) createTables() error {
	schema := `
	-- Users store one row per discovered account
	CREATE TABLE IF NOT EXISTS users (
		handle TEXT PRIMARY KEY,
		description TEXT,
		following INTEGER,
		followers INTEGER,
		ratio REAL,
		replies_pct REAL,
		reposts_pct REAL,
		originals_pct REAL,
		total_posts INTEGER,
		has_avatar INTEGER DEFAULT 0,
		created_at TEXT,
		crawl_score REAL DEFAULT 0,
		crawl_reasons TEXT,
		is_candidate INTEGER DEFAULT 0,
		import_date DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_updated DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_candidate ON users(is_candidate);

	-- Detection results store the deep analysis per account
	CREATE TABLE IF NOT EXISTS bot_detection_results (
		handle TEXT PRIMARY KEY REFERENCES users(handle),
		overall_score REAL NOT NULL,
		confidence REAL NOT NULL,
		follow_analysis_score REAL,
		posting_pattern_score REAL,
		text_analysis_score REAL,
		llm_analysis_score REAL,
		summary TEXT,
		recommendations TEXT,
		report_json TEXT,
		analyzed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_results_score ON bot_detection_results(overall_score);
	`

	_, err := bdb.db.ExecContext(context.Background(), schema)
	return err
}

// UserRecord represents a stored user row.
type UserRecord struct {
	Handle       string
	Description  string
	Following    int
	Followers    int
	Ratio        float64
	RepliesPct   float64
	RepostsPct   float64
	OriginalsPct float64
	TotalPosts   int
	HasAvatar    bool
	CreatedAt    time.Time
	CrawlScore   float64
	CrawlReasons []string
	IsCandidate  bool
	LastUpdated  time.Time
}

// UpsertUser inserts or updates a user row from a profile snapshot and its
// crawl-phase score. Writes are keyed by handle and last-write-wins, so
// re-writing the same handle is always safe.
func (bdb *BotDB) UpsertUser(ctx context.Context, profile *model.Profile, breakdown *model.ScoreBreakdown) error {
	ratio, _ := profile.FollowRatio()

	var score float64
	var isCandidate bool
	reasonsJSON := "[]"
	if breakdown != nil {
		score = breakdown.OverallScore
		isCandidate = breakdown.IsCandidate
		encoded, err := json.Marshal(breakdown.Reasons)
		if err != nil {
			return fmt.Errorf("failed to serialize reasons: %w", err)
		}
		reasonsJSON = string(encoded)
	}

	var createdAt string
	if !profile.CreatedAt.IsZero() {
		createdAt = profile.CreatedAt.UTC().Format(time.RFC3339)
	}

	query := `
	INSERT INTO users (handle, description, following, followers, ratio,
		replies_pct, reposts_pct, originals_pct, total_posts, has_avatar,
		created_at, crawl_score, crawl_reasons, is_candidate)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(handle) DO UPDATE SET
		description = excluded.description,
		following = excluded.following,
		followers = excluded.followers,
		ratio = excluded.ratio,
		replies_pct = excluded.replies_pct,
		reposts_pct = excluded.reposts_pct,
		originals_pct = excluded.originals_pct,
		total_posts = excluded.total_posts,
		has_avatar = excluded.has_avatar,
		created_at = excluded.created_at,
		crawl_score = excluded.crawl_score,
		crawl_reasons = excluded.crawl_reasons,
		is_candidate = excluded.is_candidate,
		last_updated = CURRENT_TIMESTAMP
	`

	_, err := bdb.db.ExecContext(ctx, query,
		profile.Handle,
		profile.Description,
		profile.FollowingCount,
		profile.FollowersCount,
		ratio,
		profile.ReplyPct,
		profile.RepostPct,
		profile.OriginalPct,
		profile.PostsCount,
		profile.HasAvatar,
		createdAt,
		score,
		reasonsJSON,
		isCandidate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// GetUser retrieves a user row by handle. Returns nil, nil when the handle
// is unknown.
func (bdb *BotDB) GetUser(ctx context.Context, handle string) (*UserRecord, error) {
	query := `
	SELECT handle, description, following, followers, ratio,
		replies_pct, reposts_pct, originals_pct, total_posts, has_avatar,
		created_at, crawl_score, crawl_reasons, is_candidate, last_updated
	FROM users
	WHERE handle = ?
	`

	var record UserRecord
	var createdAt, lastUpdated string
	var reasonsJSON sql.NullString

	err := bdb.db.QueryRowContext(ctx, query, handle).Scan(
		&record.Handle,
		&record.Description,
		&record.Following,
		&record.Followers,
		&record.Ratio,
		&record.RepliesPct,
		&record.RepostsPct,
		&record.OriginalsPct,
		&record.TotalPosts,
		&record.HasAvatar,
		&createdAt,
		&record.CrawlScore,
		&reasonsJSON,
		&record.IsCandidate,
		&lastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	record.CreatedAt = parseTimestamp(createdAt)
	record.LastUpdated = parseTimestamp(lastUpdated)

	if reasonsJSON.Valid && reasonsJSON.String != "" {
		if err := json.Unmarshal([]byte(reasonsJSON.String), &record.CrawlReasons); err != nil {
			return nil, fmt.Errorf("failed to parse reasons: %w", err)
		}
	}

	return &record, nil
}

// Profile reconstructs the profile snapshot stored in a user record.
func (r *UserRecord) Profile() *model.Profile {
	return &model.Profile{
		Handle:         r.Handle,
		Description:    r.Description,
		FollowingCount: r.Following,
		FollowersCount: r.Followers,
		PostsCount:     r.TotalPosts,
		CreatedAt:      r.CreatedAt,
		HasAvatar:      r.HasAvatar,
		ReplyPct:       r.RepliesPct,
		RepostPct:      r.RepostsPct,
		OriginalPct:    r.OriginalsPct,
	}
}

// AllHandles returns every handle in the users table, ordered by handle.
// The deduplication ledger preloads its store stratum from this list.
func (bdb *BotDB) AllHandles(ctx context.Context) ([]string, error) {
	rows, err := bdb.db.QueryContext(ctx, `SELECT handle FROM users ORDER BY handle`)
	if err != nil {
		return nil, fmt.Errorf("failed to list handles: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var handle string
		if err := rows.Scan(&handle); err != nil {
			return nil, fmt.Errorf("failed to scan handle: %w", err)
		}
		handles = append(handles, handle)
	}

	return handles, rows.Err()
}

// UnanalyzedHandles returns handles present in users with no detection
// result yet.
func (bdb *BotDB) UnanalyzedHandles(ctx context.Context) ([]string, error) {
	query := `
	SELECT u.handle
	FROM users u
	LEFT JOIN bot_detection_results r ON u.handle = r.handle
	WHERE r.handle IS NULL
	ORDER BY u.handle
	`

	rows, err := bdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unanalyzed handles: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var handle string
		if err := rows.Scan(&handle); err != nil {
			return nil, fmt.Errorf("failed to scan handle: %w", err)
		}
		handles = append(handles, handle)
	}

	return handles, rows.Err()
}

// CandidateHandles returns handles flagged as candidates during the crawl,
// highest crawl score first.
func (bdb *BotDB) CandidateHandles(ctx context.Context) ([]string, error) {
	query := `
	SELECT handle FROM users
	WHERE is_candidate = 1
	ORDER BY crawl_score DESC, handle
	`

	rows, err := bdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var handle string
		if err := rows.Scan(&handle); err != nil {
			return nil, fmt.Errorf("failed to scan handle: %w", err)
		}
		handles = append(handles, handle)
	}

	return handles, rows.Err()
}

// UpsertResult inserts or updates the detection result for a handle. The
// full report is stored as JSON alongside the indexed score columns.
func (bdb *BotDB) UpsertResult(ctx context.Context, report *model.AccountReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	var llmScore sql.NullFloat64
	if report.LLM != nil {
		llmScore = sql.NullFloat64{Float64: report.LLM.Confidence, Valid: true}
	}

	query := `
	INSERT INTO bot_detection_results (handle, overall_score, confidence,
		follow_analysis_score, posting_pattern_score, text_analysis_score,
		llm_analysis_score, summary, recommendations, report_json, analyzed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(handle) DO UPDATE SET
		overall_score = excluded.overall_score,
		confidence = excluded.confidence,
		follow_analysis_score = excluded.follow_analysis_score,
		posting_pattern_score = excluded.posting_pattern_score,
		text_analysis_score = excluded.text_analysis_score,
		llm_analysis_score = excluded.llm_analysis_score,
		summary = excluded.summary,
		recommendations = excluded.recommendations,
		report_json = excluded.report_json,
		analyzed_at = excluded.analyzed_at
	`

	_, err = bdb.db.ExecContext(ctx, query,
		report.Handle,
		report.OverallScore,
		report.Confidence,
		report.Follow.Score,
		report.Pattern.Score,
		report.Text.Score,
		llmScore,
		report.Summary,
		report.Recommendation,
		string(reportJSON),
		report.AnalyzedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert result: %w", err)
	}

	return nil
}

// GetResult retrieves the detection result for a handle. Returns nil, nil
// when the handle has not been analyzed.
func (bdb *BotDB) GetResult(ctx context.Context, handle string) (*model.AccountReport, error) {
	var reportJSON string
	err := bdb.db.QueryRowContext(ctx,
		`SELECT report_json FROM bot_detection_results WHERE handle = ?`, handle).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var report model.AccountReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// TopResults returns up to limit detection results ordered by overall
// score, highest first.
func (bdb *BotDB) TopResults(ctx context.Context, limit int) ([]*model.AccountReport, error) {
	query := `
	SELECT report_json FROM bot_detection_results
	ORDER BY overall_score DESC
	LIMIT ?
	`

	rows, err := bdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var reports []*model.AccountReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		var report model.AccountReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// Stats summarizes the database contents.
type Stats struct {
	// TotalUsers is the number of discovered accounts.
	TotalUsers int

	// CandidateUsers is the number of accounts flagged during the crawl.
	CandidateUsers int

	// AnalyzedUsers is the number of accounts with a detection result.
	AnalyzedUsers int

	// AverageScore is the mean overall detection score, 0 when nothing
	// has been analyzed.
	AverageScore float64
}

// GetStats computes database statistics.
func (bdb *BotDB) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats

	if err := bdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := bdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE is_candidate = 1`).Scan(&stats.CandidateUsers); err != nil {
		return nil, fmt.Errorf("failed to count candidates: %w", err)
	}
	if err := bdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bot_detection_results`).Scan(&stats.AnalyzedUsers); err != nil {
		return nil, fmt.Errorf("failed to count results: %w", err)
	}

	var avg sql.NullFloat64
	if err := bdb.db.QueryRowContext(ctx,
		`SELECT AVG(overall_score) FROM bot_detection_results`).Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to average scores: %w", err)
	}
	if avg.Valid {
		stats.AverageScore = avg.Float64
	}

	return &stats, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
