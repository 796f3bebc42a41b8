package ledger

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type recordRow struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	MatchID        string    `gorm:"size:32;index"`
	Round          int       `gorm:"not null"`
	PlayerCardID   int       `gorm:"not null"`
	ComputerCardID int       `gorm:"not null"`
	Outcome        string    `gorm:"size:16;not null"`
	ScoreAfter     int       `gorm:"not null"`
	WicketsAfter   int       `gorm:"not null"`
	BattingTeam    string    `gorm:"size:16;not null"`
	Innings        int       `gorm:"not null"`
	Strategy       string    `gorm:"size:16"`
	Timestamp      time.Time `gorm:"not null"`
}

func (recordRow) TableName() string { return "round_history" }

func rowFromRecord(r Record) recordRow {
	return recordRow{
		MatchID:        r.MatchID,
		Round:          r.Round,
		PlayerCardID:   r.PlayerCardID,
		ComputerCardID: r.ComputerCardID,
		Outcome:        r.Outcome,
		ScoreAfter:     r.ScoreAfter,
		WicketsAfter:   r.WicketsAfter,
		BattingTeam:    r.BattingTeam,
		Innings:        r.Innings,
		Strategy:       r.Strategy,
		Timestamp:      r.Timestamp,
	}
}

func (r recordRow) record() Record {
	return Record{
		MatchID:        r.MatchID,
		Round:          r.Round,
		PlayerCardID:   r.PlayerCardID,
		ComputerCardID: r.ComputerCardID,
		Outcome:        r.Outcome,
		ScoreAfter:     r.ScoreAfter,
		WicketsAfter:   r.WicketsAfter,
		BattingTeam:    r.BattingTeam,
		Innings:        r.Innings,
		Strategy:       r.Strategy,
		Timestamp:      r.Timestamp,
	}
}

// SQLStore keeps the ledger in the round_history table. Insertion order is
// the auto-increment id, which FindInBatches also pages by.
type SQLStore struct {
	db        *gorm.DB
	batchSize int
}

// NewSQLStore creates the round_history table if needed.
func NewSQLStore(ctx context.Context, db *gorm.DB) (*SQLStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&recordRow{}); err != nil {
		return nil, fmt.Errorf("migrate round_history: %w", err)
	}
	return &SQLStore{db: db, batchSize: 500}, nil
}

func (s *SQLStore) Append(ctx context.Context, rec Record) error {
	row := rowFromRecord(rec)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

func (s *SQLStore) Recent(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		return []Record{}, nil
	}
	var rows []recordRow
	if err := s.db.WithContext(ctx).Order("id desc").Limit(n).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query recent rounds: %w", err)
	}
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out, nil
}

func (s *SQLStore) Scan(ctx context.Context, fn func(Record) error) error {
	var rows []recordRow
	result := s.db.WithContext(ctx).FindInBatches(&rows, s.batchSize, func(tx *gorm.DB, batch int) error {
		for _, r := range rows {
			if err := fn(r.record()); err != nil {
				return err
			}
		}
		return nil
	})
	if result.Error != nil {
		return fmt.Errorf("scan rounds: %w", result.Error)
	}
	return nil
}

// Close is a no-op; the *gorm.DB is owned by the caller and may be shared
// with the catalog.
func (s *SQLStore) Close() error {
	return nil
}
