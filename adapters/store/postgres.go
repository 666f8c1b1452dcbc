package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/tonrent/tonrent/core"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Postgres implements the listing and wallet stores on PostgreSQL. The
// Available -> Rented transition is a conditional UPDATE, so concurrent
// renters race on the database row, not in memory.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens the database and runs the embedded migrations.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return nil, err
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *Postgres) Close() error {
	return s.db.Close()
}

const listingColumns = "item_id, owner_address, unit_price, duration_seconds, contract_address, renter_address, rental_end_time, state, created_at"

func scanListing(row interface{ Scan(...any) error }) (core.Listing, error) {
	var (
		l      core.Listing
		renter sql.NullString
		end    sql.NullTime
		state  string
	)
	err := row.Scan(&l.ItemID, &l.OwnerAddress, &l.UnitPrice, &l.DurationSeconds,
		&l.ContractAddress, &renter, &end, &state, &l.CreatedAt)
	if err != nil {
		return core.Listing{}, err
	}
	l.State = core.ListingState(state)
	if renter.Valid {
		l.RenterAddress = renter.String
	}
	if end.Valid {
		t := end.Time
		l.RentalEndTime = &t
	}
	return l, nil
}

// CreateListing inserts the listing unless the item id is taken.
func (s *Postgres) CreateListing(ctx context.Context, listing core.Listing) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO listings (item_id, owner_address, unit_price, duration_seconds, contract_address, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (item_id) DO NOTHING`,
		listing.ItemID, listing.OwnerAddress, listing.UnitPrice, listing.DurationSeconds,
		listing.ContractAddress, string(listing.State), listing.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting listing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: item %q already listed", core.ErrInvalidOffer, listing.ItemID)
	}
	return nil
}

// GetListing returns the listing for the item id.
func (s *Postgres) GetListing(ctx context.Context, itemID string) (core.Listing, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+listingColumns+" FROM listings WHERE item_id = $1", itemID)
	listing, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Listing{}, core.ErrNotFound
	}
	if err != nil {
		return core.Listing{}, fmt.Errorf("selecting listing: %w", err)
	}
	return listing, nil
}

func (s *Postgres) queryListings(ctx context.Context, query string, args ...any) ([]core.Listing, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting listings: %w", err)
	}
	defer rows.Close()

	var out []core.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, listing)
	}
	return out, rows.Err()
}

// AvailableListings returns Available listings in insertion order.
func (s *Postgres) AvailableListings(ctx context.Context) ([]core.Listing, error) {
	return s.queryListings(ctx,
		"SELECT "+listingColumns+" FROM listings WHERE state = 'available' ORDER BY id")
}

// MarkRented transitions the listing Available -> Rented with a single
// conditional UPDATE; a concurrent loser matches no row.
func (s *Postgres) MarkRented(ctx context.Context, itemID, renter string, endTime time.Time) (core.Listing, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE listings
		SET state = 'rented', renter_address = $2, rental_end_time = $3
		WHERE item_id = $1 AND state = 'available'
		RETURNING `+listingColumns,
		itemID, renter, endTime)
	listing, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Listing{}, core.ErrNotFound
	}
	if err != nil {
		return core.Listing{}, fmt.Errorf("updating listing: %w", err)
	}
	return listing, nil
}

// ListingsByOwner returns all listings owned by the wallet.
func (s *Postgres) ListingsByOwner(ctx context.Context, owner string) ([]core.Listing, error) {
	return s.queryListings(ctx,
		"SELECT "+listingColumns+" FROM listings WHERE owner_address = $1 ORDER BY id", owner)
}

// ListingsByRenter returns listings currently rented by the wallet.
func (s *Postgres) ListingsByRenter(ctx context.Context, renter string) ([]core.Listing, error) {
	return s.queryListings(ctx,
		"SELECT "+listingColumns+" FROM listings WHERE renter_address = $1 AND state = 'rented' ORDER BY id", renter)
}

// SaveWallet upserts the user's wallet binding, last write wins.
func (s *Postgres) SaveWallet(ctx context.Context, userID int64, address string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wallets (user_id, wallet_address)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET wallet_address = EXCLUDED.wallet_address`,
		userID, address)
	if err != nil {
		return fmt.Errorf("upserting wallet: %w", err)
	}
	return nil
}

// GetWallet returns the bound address, "" when the user has none.
func (s *Postgres) GetWallet(ctx context.Context, userID int64) (string, error) {
	var address string
	err := s.db.QueryRowContext(ctx,
		"SELECT wallet_address FROM wallets WHERE user_id = $1", userID).Scan(&address)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("selecting wallet: %w", err)
	}
	return address, nil
}
