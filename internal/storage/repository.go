// Package storage persists the transaction snapshot and the household
// settings in SQLite. The snapshot is a cache of the external feed, the
// settings are the source of truth for configuration.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"begroting/internal/core"
	"begroting/internal/log"

	_ "modernc.org/sqlite"
)

// Settings keys. Each holds one JSON blob.
const (
	keySetup       = "budget_setup"
	keyGoals       = "savings_goals"
	keyAPILock     = "api_lock"
	keyRefreshedAt = "snapshot_refreshed_at"
)

var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceSnapshot swaps the stored transaction snapshot for a new one in a
// single transaction, so readers never see a half-written feed.
func (r *SQLiteRepository) ReplaceSnapshot(ctx context.Context, txs []core.Transaction, fetchedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (id, date, description, category, amount_cents, type, account, assigned_to, split_percent, payment_method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		var split sql.NullFloat64
		if t.SplitPercent != nil {
			split = sql.NullFloat64{Float64: *t.SplitPercent, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.Date.UTC().Format(time.RFC3339), t.Description, t.Category,
			t.Amount.Cents, string(t.Type), t.Account, string(t.AssignedTo),
			split, string(t.PaymentMethod)); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err := setSettingTx(ctx, tx, keyRefreshedAt, fetchedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.logger.InfoContext(ctx, "snapshot replaced",
		log.FieldOperation, log.OpSave,
		log.FieldTxCount, len(txs))
	return nil
}

// LoadSnapshot returns the stored transactions and when they were fetched.
// An empty store yields an empty slice and a zero time, not an error.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context) ([]core.Transaction, time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, description, category, amount_cents, type, account, assigned_to, split_percent, payment_method
		FROM transactions ORDER BY date, id`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			date    string
			txType  string
			assign  string
			method  string
			split   sql.NullFloat64
		)
		if err := rows.Scan(&t.ID, &date, &t.Description, &t.Category, &t.Amount.Cents,
			&txType, &t.Account, &assign, &split, &method); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
		}
		t.Type = core.TxType(txType)
		t.AssignedTo = core.Assignment(assign)
		t.PaymentMethod = core.PaymentMethod(method)
		if split.Valid {
			v := split.Float64
			t.SplitPercent = &v
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("iterate snapshot: %w", err)
	}

	refreshedAt, err := r.getSetting(ctx, keyRefreshedAt)
	if errors.Is(err, ErrNotFound) {
		return out, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	fetched, err := time.Parse(time.RFC3339, refreshedAt)
	if err != nil {
		return out, time.Time{}, nil
	}
	return out, fetched, nil
}

// LoadSetup returns the stored household setup, or ErrNotFound before the
// first save.
func (r *SQLiteRepository) LoadSetup(ctx context.Context) (*core.BudgetSetup, error) {
	raw, err := r.getSetting(ctx, keySetup)
	if err != nil {
		return nil, err
	}
	var setup core.BudgetSetup
	if err := json.Unmarshal([]byte(raw), &setup); err != nil {
		return nil, fmt.Errorf("decode setup: %w", err)
	}
	return &setup, nil
}

// SaveSetup stores the household setup.
func (r *SQLiteRepository) SaveSetup(ctx context.Context, setup *core.BudgetSetup) error {
	raw, err := json.Marshal(setup)
	if err != nil {
		return fmt.Errorf("encode setup: %w", err)
	}
	return r.setSetting(ctx, keySetup, string(raw))
}

// LoadGoals returns the stored savings goals. No goals is a valid state.
func (r *SQLiteRepository) LoadGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	raw, err := r.getSetting(ctx, keyGoals)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var goals []core.SavingsGoal
	if err := json.Unmarshal([]byte(raw), &goals); err != nil {
		return nil, fmt.Errorf("decode goals: %w", err)
	}
	return goals, nil
}

// SaveGoals stores the savings goals.
func (r *SQLiteRepository) SaveGoals(ctx context.Context, goals []core.SavingsGoal) error {
	raw, err := json.Marshal(goals)
	if err != nil {
		return fmt.Errorf("encode goals: %w", err)
	}
	return r.setSetting(ctx, keyGoals, string(raw))
}

// RecordSettlement moves the setup's settlement timestamp forward inside a
// transaction. Settling never touches the transaction snapshot; the new
// timestamp alone re-derives every balance.
func (r *SQLiteRepository) RecordSettlement(ctx context.Context, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, keySetup).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load setup: %w", err)
	}

	var setup core.BudgetSetup
	if err := json.Unmarshal([]byte(raw), &setup); err != nil {
		return fmt.Errorf("decode setup: %w", err)
	}
	setup.LastSettlement = &at

	updated, err := json.Marshal(&setup)
	if err != nil {
		return fmt.Errorf("encode setup: %w", err)
	}
	if err := setSettingTx(ctx, tx, keySetup, string(updated)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.logger.InfoContext(ctx, "settlement recorded",
		log.FieldOperation, log.OpSettle,
		"settled_at", at.Format(time.RFC3339))
	return nil
}

// APILocked reports whether write endpoints are locked. Missing means
// unlocked.
func (r *SQLiteRepository) APILocked(ctx context.Context) (bool, error) {
	raw, err := r.getSetting(ctx, keyAPILock)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return raw == "true", nil
}

// SetAPILocked sets the write-endpoint lock flag.
func (r *SQLiteRepository) SetAPILocked(ctx context.Context, locked bool) error {
	v := "false"
	if locked {
		v = "true"
	}
	return r.setSetting(ctx, keyAPILock, v)
}

func (r *SQLiteRepository) getSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) setSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func setSettingTx(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}
