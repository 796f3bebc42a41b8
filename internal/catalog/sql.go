package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// cardRow is the persisted form of a Card.
type cardRow struct {
	ID      int    `gorm:"primaryKey;autoIncrement:false"`
	Name    string `gorm:"size:100;not null"`
	Batting int    `gorm:"not null"`
	Bowling int    `gorm:"not null"`
	Runs    int    `gorm:"not null"`
}

func (cardRow) TableName() string { return "player_cards" }

func (r cardRow) card() Card {
	return Card{ID: r.ID, Name: r.Name, Batting: r.Batting, Bowling: r.Bowling, Runs: r.Runs}
}

// SQL is a catalog backed by the player_cards table.
type SQL struct {
	db *gorm.DB
}

// NewSQL returns a catalog reading from db. Call Migrate once to create the table.
func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

// Migrate creates or updates the player_cards table.
func (s *SQL) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&cardRow{}); err != nil {
		return fmt.Errorf("migrate player_cards: %w", err)
	}
	return nil
}

// Seed inserts cards that are not already present.
func (s *SQL) Seed(ctx context.Context, cards []Card) error {
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			return err
		}
		row := cardRow{ID: c.ID, Name: c.Name, Batting: c.Batting, Bowling: c.Bowling, Runs: c.Runs}
		if err := s.db.WithContext(ctx).FirstOrCreate(&row, cardRow{ID: c.ID}).Error; err != nil {
			return fmt.Errorf("seed card %d: %w", c.ID, err)
		}
	}
	return nil
}

// GetCard returns the card with the given id.
func (s *SQL) GetCard(ctx context.Context, id int) (Card, error) {
	var row cardRow
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Card{}, fmt.Errorf("card %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Card{}, fmt.Errorf("query card %d: %w", id, err)
	}
	return row.card(), nil
}

// ListCards returns all cards ordered by id.
func (s *SQL) ListCards(ctx context.Context) ([]Card, error) {
	var rows []cardRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	cards := make([]Card, len(rows))
	for i, r := range rows {
		cards[i] = r.card()
	}
	return cards, nil
}
