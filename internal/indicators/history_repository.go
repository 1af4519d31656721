package indicators

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HistoryRecord is one persisted resolution.
type HistoryRecord struct {
	ID         string   `json:"id"`
	Symbol     string   `json:"symbol"`
	Indicator  string   `json:"indicator"`
	TargetDate string   `json:"target_date"`
	Mode       string   `json:"mode"`
	Value      *float64 `json:"value,omitempty"`
	NoData     bool     `json:"no_data"`
	CreatedAt  string   `json:"created_at"`
}

// HistoryRepository persists resolution outcomes for later inspection.
type HistoryRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, log zerolog.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:  db,
		log: log.With().Str("repo", "history").Logger(),
	}
}

// Create inserts a resolution record
func (r *HistoryRepository) Create(res Result) error {
	var value interface{}
	if !res.NoData {
		value = res.Value
	}

	query := `
		INSERT INTO resolutions
		(id, symbol, indicator, target_date, mode, value, no_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		uuid.New().String(),
		res.Symbol,
		res.Indicator,
		res.Date,
		string(res.Mode),
		value,
		boolToInt(res.NoData),
		time.Now().Format(time.RFC3339),
	)

	if err != nil {
		return fmt.Errorf("failed to create resolution record: %w", err)
	}

	return nil
}

// ListRecent returns the most recent resolution records, newest first.
func (r *HistoryRepository) ListRecent(limit int) ([]HistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, symbol, indicator, target_date, mode, value, no_data, created_at
		FROM resolutions
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolutions: %w", err)
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var rec HistoryRecord
		var value sql.NullFloat64
		var noData int

		err := rows.Scan(&rec.ID, &rec.Symbol, &rec.Indicator, &rec.TargetDate,
			&rec.Mode, &value, &noData, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resolution: %w", err)
		}

		if value.Valid {
			rec.Value = &value.Float64
		}
		rec.NoData = noData != 0

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resolutions: %w", err)
	}

	return records, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
