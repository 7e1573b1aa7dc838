// Package store provides persistence for cycle history, symptom logs,
// diagnoses, and predictions. Two backends are supported: SQLite for the
// standalone profile and PostgreSQL for server deployments.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lunacycle-screening-server/internal/domain"
)

// SQLiteStore implements the history, diagnosis, and prediction
// repositories over a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a SQLite store, creating the database file and
// schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS cycle_records (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		start_date DATETIME NOT NULL,
		end_date DATETIME,
		flow_intensity TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS symptom_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date DATETIME NOT NULL,
		symptom_type TEXT NOT NULL,
		severity INTEGER NOT NULL,
		mood TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS risk_factors (
		user_id TEXT NOT NULL,
		risk_factor TEXT NOT NULL,
		PRIMARY KEY (user_id, risk_factor)
	);

	CREATE TABLE IF NOT EXISTS diagnoses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		condition_id TEXT NOT NULL,
		score REAL NOT NULL,
		severity TEXT NOT NULL,
		status TEXT NOT NULL,
		assessment TEXT DEFAULT '',
		recommendation TEXT DEFAULT '',
		requires_consultation INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		reviewed INTEGER NOT NULL DEFAULT 0,
		reviewed_at DATETIME,
		follow_up_date DATETIME
	);

	CREATE TABLE IF NOT EXISTS predictions (
		user_id TEXT NOT NULL,
		next_period_start DATETIME NOT NULL,
		ovulation_estimate DATETIME NOT NULL,
		fertile_window_start DATETIME NOT NULL,
		fertile_window_end DATETIME NOT NULL,
		confidence REAL NOT NULL,
		based_on_cycles INTEGER NOT NULL,
		computed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cycles_user ON cycle_records(user_id, start_date);
	CREATE INDEX IF NOT EXISTS idx_symptoms_user_date ON symptom_entries(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_diagnoses_user ON diagnoses(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_diagnoses_followup ON diagnoses(user_id, follow_up_date);
	CREATE INDEX IF NOT EXISTS idx_predictions_user ON predictions(user_id, computed_at);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface over sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDiagnosis(s scanner) (*domain.Diagnosis, error) {
	d := &domain.Diagnosis{}
	var severity, status string
	var reviewedAt, followUp sql.NullTime

	err := s.Scan(
		&d.ID, &d.UserID, &d.ConditionID, &d.Score, &severity, &status,
		&d.Assessment, &d.Recommendation, &d.RequiresProfessionalConsultation,
		&d.CreatedAt, &d.Reviewed, &reviewedAt, &followUp,
	)
	if err != nil {
		return nil, err
	}

	d.Severity = domain.SeverityBand(severity)
	d.Status = domain.DiagnosisStatus(status)
	if reviewedAt.Valid {
		t := reviewedAt.Time
		d.ReviewedAt = &t
	}
	if followUp.Valid {
		t := followUp.Time
		d.FollowUpDate = &t
	}
	return d, nil
}

const diagnosisColumns = `id, user_id, condition_id, score, severity, status,
		assessment, recommendation, requires_consultation,
		created_at, reviewed, reviewed_at, follow_up_date`

// Save persists a newly created diagnosis.
func (s *SQLiteStore) Save(ctx context.Context, d *domain.Diagnosis) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diagnoses (
			id, user_id, condition_id, score, severity, status,
			assessment, recommendation, requires_consultation,
			created_at, reviewed, reviewed_at, follow_up_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID, d.UserID, d.ConditionID, d.Score, string(d.Severity), string(d.Status),
		d.Assessment, d.Recommendation, d.RequiresProfessionalConsultation,
		d.CreatedAt, d.Reviewed, nullTime(d.ReviewedAt), nullTime(d.FollowUpDate),
	)
	if err != nil {
		return fmt.Errorf("failed to insert diagnosis: %w", err)
	}
	return nil
}

// Update persists a status/review mutation.
func (s *SQLiteStore) Update(ctx context.Context, d *domain.Diagnosis) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE diagnoses SET
			status = ?, reviewed = ?, reviewed_at = ?, follow_up_date = ?
		WHERE id = ?
	`, string(d.Status), d.Reviewed, nullTime(d.ReviewedAt), nullTime(d.FollowUpDate), d.ID)
	if err != nil {
		return fmt.Errorf("failed to update diagnosis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("diagnosis %s: %w", d.ID, domain.ErrNotFound)
	}
	return nil
}

// GetByID returns a diagnosis by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*domain.Diagnosis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+diagnosisColumns+` FROM diagnoses WHERE id = ?`, id)

	d, err := scanDiagnosis(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("diagnosis %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan diagnosis: %w", err)
	}
	return d, nil
}

// ListByUser returns all of a user's diagnoses, newest first.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]*domain.Diagnosis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+diagnosisColumns+` FROM diagnoses WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnoses: %w", err)
	}
	defer rows.Close()

	return collectDiagnoses(rows)
}

// ListDueForFollowUp returns unreviewed diagnoses with a follow-up date
// at or before now, ascending by follow-up date.
func (s *SQLiteStore) ListDueForFollowUp(ctx context.Context, userID string, now time.Time) ([]*domain.Diagnosis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+diagnosisColumns+` FROM diagnoses
		WHERE user_id = ? AND reviewed = 0 AND status != ?
		  AND follow_up_date IS NOT NULL AND follow_up_date <= ?
		ORDER BY follow_up_date ASC
	`, userID, string(domain.StatusDismissed), now)
	if err != nil {
		return nil, fmt.Errorf("failed to query follow-ups: %w", err)
	}
	defer rows.Close()

	return collectDiagnoses(rows)
}

// ListAllDueForFollowUp returns due diagnoses across all users for the
// scheduler sweep.
func (s *SQLiteStore) ListAllDueForFollowUp(ctx context.Context, now time.Time) ([]*domain.Diagnosis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+diagnosisColumns+` FROM diagnoses
		WHERE reviewed = 0 AND status != ?
		  AND follow_up_date IS NOT NULL AND follow_up_date <= ?
		ORDER BY follow_up_date ASC
	`, string(domain.StatusDismissed), now)
	if err != nil {
		return nil, fmt.Errorf("failed to query follow-ups: %w", err)
	}
	defer rows.Close()

	return collectDiagnoses(rows)
}

func collectDiagnoses(rows *sql.Rows) ([]*domain.Diagnosis, error) {
	var out []*domain.Diagnosis
	for rows.Next() {
		d, err := scanDiagnosis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SavePrediction persists a cycle prediction.
func (s *SQLiteStore) SavePrediction(ctx context.Context, p *domain.CyclePrediction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions (
			user_id, next_period_start, ovulation_estimate,
			fertile_window_start, fertile_window_end,
			confidence, based_on_cycles, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.UserID, p.NextPeriodStart, p.OvulationEstimate,
		p.FertileWindowStart, p.FertileWindowEnd,
		p.Confidence, p.BasedOnCycles, p.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}
	return nil
}

// GetLatestPrediction returns the most recently computed prediction.
func (s *SQLiteStore) GetLatestPrediction(ctx context.Context, userID string) (*domain.CyclePrediction, error) {
	p := &domain.CyclePrediction{}
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, next_period_start, ovulation_estimate,
		       fertile_window_start, fertile_window_end,
		       confidence, based_on_cycles, computed_at
		FROM predictions
		WHERE user_id = ?
		ORDER BY computed_at DESC
		LIMIT 1
	`, userID).Scan(
		&p.UserID, &p.NextPeriodStart, &p.OvulationEstimate,
		&p.FertileWindowStart, &p.FertileWindowEnd,
		&p.Confidence, &p.BasedOnCycles, &p.ComputedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("prediction for user %s: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan prediction: %w", err)
	}
	return p, nil
}

// AddCycleRecord appends a cycle record for the logging surface.
func (s *SQLiteStore) AddCycleRecord(ctx context.Context, c *domain.CycleRecord) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cycle_records (id, user_id, start_date, end_date, flow_intensity)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.StartDate, nullTime(c.EndDate), string(c.FlowIntensity))
	if err != nil {
		return fmt.Errorf("failed to insert cycle record: %w", err)
	}
	return nil
}

// AddSymptomEntry appends a symptom entry for the logging surface.
func (s *SQLiteStore) AddSymptomEntry(ctx context.Context, e *domain.SymptomEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO symptom_entries (id, user_id, date, symptom_type, severity, mood)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.UserID, e.Date, string(e.SymptomType), e.Severity, e.Mood)
	if err != nil {
		return fmt.Errorf("failed to insert symptom entry: %w", err)
	}
	return nil
}

// SetRiskFactors replaces the user's self-reported risk factors.
func (s *SQLiteStore) SetRiskFactors(ctx context.Context, userID string, factors []domain.RiskFactor) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM risk_factors WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear risk factors: %w", err)
	}
	for _, f := range factors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO risk_factors (user_id, risk_factor) VALUES (?, ?)`, userID, string(f)); err != nil {
			return fmt.Errorf("failed to insert risk factor: %w", err)
		}
	}
	return tx.Commit()
}

// GetCycleHistory returns the user's cycle records ordered by start date.
func (s *SQLiteStore) GetCycleHistory(ctx context.Context, userID string) ([]domain.CycleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, start_date, end_date, flow_intensity
		FROM cycle_records
		WHERE user_id = ?
		ORDER BY start_date ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycle records: %w", err)
	}
	defer rows.Close()

	var out []domain.CycleRecord
	for rows.Next() {
		var c domain.CycleRecord
		var end sql.NullTime
		var flow string
		if err := rows.Scan(&c.ID, &c.UserID, &c.StartDate, &end, &flow); err != nil {
			return nil, fmt.Errorf("failed to scan cycle record: %w", err)
		}
		if end.Valid {
			t := end.Time
			c.EndDate = &t
		}
		c.FlowIntensity = domain.FlowIntensity(flow)
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetSymptomLog returns symptom entries logged on or after since.
func (s *SQLiteStore) GetSymptomLog(ctx context.Context, userID string, since time.Time) ([]domain.SymptomEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, symptom_type, severity, mood
		FROM symptom_entries
		WHERE user_id = ? AND date >= ?
		ORDER BY date ASC
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query symptom entries: %w", err)
	}
	defer rows.Close()

	var out []domain.SymptomEntry
	for rows.Next() {
		var e domain.SymptomEntry
		var symptom string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &symptom, &e.Severity, &e.Mood); err != nil {
			return nil, fmt.Errorf("failed to scan symptom entry: %w", err)
		}
		e.SymptomType = domain.SymptomType(symptom)
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetRiskFactors returns the user's self-reported risk factors.
func (s *SQLiteStore) GetRiskFactors(ctx context.Context, userID string) ([]domain.RiskFactor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT risk_factor FROM risk_factors WHERE user_id = ? ORDER BY risk_factor ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query risk factors: %w", err)
	}
	defer rows.Close()

	var out []domain.RiskFactor
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("failed to scan risk factor: %w", err)
		}
		out = append(out, domain.RiskFactor(f))
	}
	return out, rows.Err()
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
