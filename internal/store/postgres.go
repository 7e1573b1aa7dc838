package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/lunacycle-screening-server/internal/domain"
)

// PostgresStore implements the history, diagnosis, and prediction
// repositories over PostgreSQL. The schema is created by migrations, not
// by the store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an existing connection. The schema must already
// exist.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL opens a connection pool from a connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Save persists a newly created diagnosis.
func (s *PostgresStore) Save(ctx context.Context, d *domain.Diagnosis) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diagnoses (
			id, user_id, condition_id, score, severity, status,
			assessment, recommendation, requires_consultation,
			created_at, reviewed, reviewed_at, follow_up_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
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
func (s *PostgresStore) Update(ctx context.Context, d *domain.Diagnosis) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE diagnoses SET
			status = $1, reviewed = $2, reviewed_at = $3, follow_up_date = $4
		WHERE id = $5
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
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*domain.Diagnosis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+diagnosisColumns+` FROM diagnoses WHERE id = $1`, id)

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
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*domain.Diagnosis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+diagnosisColumns+` FROM diagnoses WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnoses: %w", err)
	}
	defer rows.Close()

	return collectDiagnoses(rows)
}

// ListDueForFollowUp returns unreviewed diagnoses with a follow-up date
// at or before now, ascending by follow-up date.
func (s *PostgresStore) ListDueForFollowUp(ctx context.Context, userID string, now time.Time) ([]*domain.Diagnosis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+diagnosisColumns+` FROM diagnoses
		WHERE user_id = $1 AND reviewed = FALSE AND status != $2
		  AND follow_up_date IS NOT NULL AND follow_up_date <= $3
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
func (s *PostgresStore) ListAllDueForFollowUp(ctx context.Context, now time.Time) ([]*domain.Diagnosis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+diagnosisColumns+` FROM diagnoses
		WHERE reviewed = FALSE AND status != $1
		  AND follow_up_date IS NOT NULL AND follow_up_date <= $2
		ORDER BY follow_up_date ASC
	`, string(domain.StatusDismissed), now)
	if err != nil {
		return nil, fmt.Errorf("failed to query follow-ups: %w", err)
	}
	defer rows.Close()

	return collectDiagnoses(rows)
}

// SavePrediction persists a cycle prediction.
func (s *PostgresStore) SavePrediction(ctx context.Context, p *domain.CyclePrediction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions (
			user_id, next_period_start, ovulation_estimate,
			fertile_window_start, fertile_window_end,
			confidence, based_on_cycles, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
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
func (s *PostgresStore) GetLatestPrediction(ctx context.Context, userID string) (*domain.CyclePrediction, error) {
	p := &domain.CyclePrediction{}
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, next_period_start, ovulation_estimate,
		       fertile_window_start, fertile_window_end,
		       confidence, based_on_cycles, computed_at
		FROM predictions
		WHERE user_id = $1
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
func (s *PostgresStore) AddCycleRecord(ctx context.Context, c *domain.CycleRecord) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cycle_records (id, user_id, start_date, end_date, flow_intensity)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.UserID, c.StartDate, nullTime(c.EndDate), string(c.FlowIntensity))
	if err != nil {
		return fmt.Errorf("failed to insert cycle record: %w", err)
	}
	return nil
}

// AddSymptomEntry appends a symptom entry for the logging surface.
func (s *PostgresStore) AddSymptomEntry(ctx context.Context, e *domain.SymptomEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO symptom_entries (id, user_id, date, symptom_type, severity, mood)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.UserID, e.Date, string(e.SymptomType), e.Severity, e.Mood)
	if err != nil {
		return fmt.Errorf("failed to insert symptom entry: %w", err)
	}
	return nil
}

// SetRiskFactors replaces the user's self-reported risk factors.
func (s *PostgresStore) SetRiskFactors(ctx context.Context, userID string, factors []domain.RiskFactor) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM risk_factors WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear risk factors: %w", err)
	}
	for _, f := range factors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO risk_factors (user_id, risk_factor) VALUES ($1, $2)`, userID, string(f)); err != nil {
			return fmt.Errorf("failed to insert risk factor: %w", err)
		}
	}
	return tx.Commit()
}

// GetCycleHistory returns the user's cycle records ordered by start date.
func (s *PostgresStore) GetCycleHistory(ctx context.Context, userID string) ([]domain.CycleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, start_date, end_date, flow_intensity
		FROM cycle_records
		WHERE user_id = $1
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
func (s *PostgresStore) GetSymptomLog(ctx context.Context, userID string, since time.Time) ([]domain.SymptomEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, symptom_type, severity, mood
		FROM symptom_entries
		WHERE user_id = $1 AND date >= $2
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
func (s *PostgresStore) GetRiskFactors(ctx context.Context, userID string) ([]domain.RiskFactor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT risk_factor FROM risk_factors WHERE user_id = $1 ORDER BY risk_factor ASC
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
