// Package portfolio stores saved comparisons and revalues them on demand.
package portfolio

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/hindsight/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrItemNotFound is returned when removing an id that does not exist
var ErrItemNotFound = errors.New("portfolio item not found")

// Item is one saved holding
type Item struct {
	ID            string         `json:"id"`
	AssetID       domain.AssetID `json:"asset_id"`
	InitialAmount float64        `json:"initial_amount"` // TRY invested
	Units         float64        `json:"units"`          // Units acquired; 0 for assets priced by year
	Date          string         `json:"date"`           // YYYY-MM-DD
	CryptoID      string         `json:"crypto_id,omitempty"`
	EquitySymbol  string         `json:"equity_symbol,omitempty"`
	CarID         string         `json:"car_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// SubID returns the sub-asset selection of the item, if any
func (i Item) SubID() string {
	switch {
	case i.CryptoID != "":
		return i.CryptoID
	case i.EquitySymbol != "":
		return i.EquitySymbol
	}
	return i.CarID
}

// Repository handles holdings database operations
type Repository struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

// NewRepository creates a new holdings repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		now: time.Now,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

const itemColumns = `id, asset_id, amount, initial_amount, purchase_date,
	crypto_id, equity_symbol, car_id, created_at`

// Add inserts item, assigning its ID and CreatedAt when unset
func (r *Repository) Add(item *Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = r.now()
	}

	_, err := r.db.Exec(`INSERT INTO holdings (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		string(item.AssetID),
		item.Units,
		item.InitialAmount,
		item.Date,
		nullString(item.CryptoID),
		nullString(item.EquitySymbol),
		nullString(item.CarID),
		item.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio item: %w", err)
	}

	r.log.Debug().Str("id", item.ID).Str("asset", string(item.AssetID)).Msg("Portfolio item added")
	return nil
}

// List returns every item, oldest first
func (r *Repository) List() ([]Item, error) {
	rows, err := r.db.Query(`SELECT ` + itemColumns + ` FROM holdings ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio items: %w", err)
	}

	return items, nil
}

// Get returns the item with id, or nil if there is none
func (r *Repository) Get(id string) (*Item, error) {
	row := r.db.QueryRow(`SELECT `+itemColumns+` FROM holdings WHERE id = ?`, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio item %s: %w", id, err)
	}
	return &item, nil
}

// Remove deletes the item with id
func (r *Repository) Remove(id string) error {
	result, err := r.db.Exec(`DELETE FROM holdings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio item %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	r.log.Debug().Str("id", id).Msg("Portfolio item removed")
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(s scanner) (Item, error) {
	var item Item
	var assetID string
	var cryptoID, equitySymbol, carID sql.NullString
	var createdAt int64

	if err := s.Scan(
		&item.ID,
		&assetID,
		&item.Units,
		&item.InitialAmount,
		&item.Date,
		&cryptoID,
		&equitySymbol,
		&carID,
		&createdAt,
	); err != nil {
		return Item{}, err
	}

	item.AssetID = domain.AssetID(assetID)
	item.CryptoID = cryptoID.String
	item.EquitySymbol = equitySymbol.String
	item.CarID = carID.String
	item.CreatedAt = time.UnixMilli(createdAt).UTC()
	return item, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
