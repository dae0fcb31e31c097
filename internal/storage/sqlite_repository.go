package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens the database at path, creating its directory, and brings
// the schema up to date.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (Setting, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM settings WHERE key = ?`, key)
	var out Setting
	var updated string
	if err := row.Scan(&out.Key, &out.Value, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Setting{}, ErrNotFound
		}
		return Setting{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return Setting{}, err
	}
	out.UpdatedAt = updatedAt
	return out, nil
}

func (r *SQLiteRepository) PutSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, mustTime(time.Now()),
	)
	return err
}

func (r *SQLiteRepository) DeleteSetting(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) RecordDelivery(ctx context.Context, in Delivery) error {
	if in.ID == "" {
		return errors.New("storage: delivery id is required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO deliveries (id, title, occurs_at, offset_minutes, delivered_at)
		VALUES (?, ?, ?, ?, ?)`,
		in.ID, in.Title, mustTime(in.OccursAt), in.OffsetMinutes, mustTime(in.DeliveredAt),
	)
	return err
}

func (r *SQLiteRepository) GetDelivery(ctx context.Context, id string) (Delivery, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, occurs_at, offset_minutes, delivered_at
		FROM deliveries WHERE id = ?`, id)
	item, err := scanDelivery(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Delivery{}, ErrNotFound
		}
		return Delivery{}, err
	}
	return item, nil
}

// ListDeliveries returns deliveries newest first.
func (r *SQLiteRepository) ListDeliveries(ctx context.Context, filter DeliveryListFilter) ([]Delivery, error) {
	query := `SELECT id, title, occurs_at, offset_minutes, delivered_at FROM deliveries`
	args := make([]any, 0, 3)
	if filter.Since != nil {
		query += ` WHERE delivered_at >= ?`
		args = append(args, mustTime(*filter.Since))
	}
	query += ` ORDER BY delivered_at DESC, id`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Delivery, 0)
	for rows.Next() {
		item, scanErr := scanDelivery(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// PruneDeliveries removes deliveries raised before the cutoff.
func (r *SQLiteRepository) PruneDeliveries(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM deliveries WHERE delivered_at < ?`, mustTime(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// mustTime stores UTC with a fixed-width fraction so that text ordering in
// SQL matches time ordering.
func mustTime(v time.Time) string {
	return v.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	clause := ""
	if limit > 0 {
		clause += " LIMIT ?"
		*args = append(*args, limit)
	} else if offset > 0 {
		clause += " LIMIT -1"
	}
	if offset > 0 {
		clause += " OFFSET ?"
		*args = append(*args, offset)
	}
	return clause
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDelivery(s scanner) (Delivery, error) {
	var out Delivery
	var occurs, delivered string
	if err := s.Scan(&out.ID, &out.Title, &occurs, &out.OffsetMinutes, &delivered); err != nil {
		return Delivery{}, err
	}
	occursAt, err := parseRequiredTime(occurs)
	if err != nil {
		return Delivery{}, err
	}
	deliveredAt, err := parseRequiredTime(delivered)
	if err != nil {
		return Delivery{}, err
	}
	out.OccursAt = occursAt.Local()
	out.DeliveredAt = deliveredAt.Local()
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
