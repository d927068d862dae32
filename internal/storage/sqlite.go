// Package storage implements store.Stores on a local SQLite database. It
// is the self-hosted alternative to the Firestore backend and keeps the
// same record encoding: numeric columns hold decimal strings, '' meaning
// absent.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"rentledger/internal/core"
	"rentledger/internal/store"
)

type SQLiteStores struct {
	db *sql.DB
}

func NewSQLiteStores(dbPath string) (*SQLiteStores, error) {
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

	return &SQLiteStores{db: db}, nil
}

func (r *SQLiteStores) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const expenseColumns = `id, date, house, total_elect, rt_ac_fridge, phea_fridge, mining,
	electricity, water, waste, additional, users, created_at, updated_at`

// List pages through the expense table with ORDER BY + OFFSET, the SQL
// spelling of the documented discard-then-read pagination. Each request
// re-walks the offset; no cursor is kept between calls.
func (r *SQLiteStores) List(ctx context.Context, opts store.ListOptions) (store.Page, error) {
	opts = opts.Normalize()

	where := ""
	args := []any{}
	if opts.SearchTerm != "" {
		where = " WHERE date >= ? AND date <= ?"
		args = append(args, opts.SearchTerm, opts.SearchTerm+"")
	}

	// Totals count the whole table even while searching; page numbers
	// are collection-wide across every backend.
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses").Scan(&total); err != nil {
		return store.Page{}, r.fail(ctx, "sqlite.list.count", err)
	}

	orderExpr := "date"
	switch opts.SortField {
	case "house", "electricity", "water", "waste", "additional":
		orderExpr = fmt.Sprintf("CAST(NULLIF(%s, '') AS REAL)", opts.SortField)
	}
	dir := "DESC"
	if opts.SortDirection == store.SortAscending {
		dir = "ASC"
	}

	query := fmt.Sprintf("SELECT %s FROM expenses%s ORDER BY %s %s LIMIT ? OFFSET ?",
		expenseColumns, where, orderExpr, dir)
	args = append(args, opts.PageSize, opts.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return store.Page{}, r.fail(ctx, "sqlite.list", err)
	}
	defer rows.Close()

	var items []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return store.Page{}, r.fail(ctx, "sqlite.list.scan", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return store.Page{}, r.fail(ctx, "sqlite.list.rows", err)
	}
	if items == nil {
		items = []core.Expense{}
	}

	return store.Page{
		Items:       items,
		TotalItems:  total,
		TotalPages:  store.PageCount(total, opts.PageSize),
		CurrentPage: opts.Page,
	}, nil
}

func (r *SQLiteStores) Create(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	rec := store.EncodeExpense(e)
	users, err := json.Marshal(rec.Users)
	if err != nil {
		return "", fmt.Errorf("marshal users: %w", err)
	}
	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `INSERT INTO expenses
		(id, date, house, total_elect, rt_ac_fridge, phea_fridge, mining,
		 electricity, water, waste, additional, users, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Date, rec.House, rec.TotalElect, rec.RtAcFridge, rec.PheaFridge, rec.Mining,
		rec.Electricity, rec.Water, rec.Waste, rec.Additional, string(users), formatTime(time.Now()))
	if err != nil {
		return "", r.fail(ctx, "sqlite.create", err)
	}
	slog.InfoContext(ctx, "Expense saved", "id", id, "date", rec.Date)
	return id, nil
}

func (r *SQLiteStores) Update(ctx context.Context, e core.Expense) error {
	if e.ID == "" {
		return nil
	}
	if err := e.Validate(); err != nil {
		return err
	}
	rec := store.EncodeExpense(e)
	users, err := json.Marshal(rec.Users)
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `UPDATE expenses SET
		date = ?, house = ?, total_elect = ?, rt_ac_fridge = ?, phea_fridge = ?,
		mining = ?, electricity = ?, water = ?, waste = ?, additional = ?,
		users = ?, updated_at = ? WHERE id = ?`,
		rec.Date, rec.House, rec.TotalElect, rec.RtAcFridge, rec.PheaFridge,
		rec.Mining, rec.Electricity, rec.Water, rec.Waste, rec.Additional,
		string(users), formatTime(time.Now()), e.ID)
	if err != nil {
		return r.fail(ctx, "sqlite.update", err)
	}
	return nil
}

func (r *SQLiteStores) Delete(ctx context.Context, e core.Expense) error {
	if e.ID == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", e.ID); err != nil {
		return r.fail(ctx, "sqlite.delete", err)
	}
	return nil
}

func (r *SQLiteStores) SeedBulk(ctx context.Context, rows []store.SeedRow) (int, error) {
	created := 0
	for _, row := range rows {
		e, err := store.ExpenseFromSeedRow(row)
		if err != nil {
			return created, fmt.Errorf("clean seed row %q: %w", row.Date, err)
		}
		if _, err := r.Create(ctx, e); err != nil {
			return created, err
		}
		created++
	}
	slog.InfoContext(ctx, "Bulk seed finished", "rows", created)
	return created, nil
}

func (r *SQLiteStores) ListTypes(ctx context.Context) ([]core.AdditionalExpenseType, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM expense_types ORDER BY name")
	if err != nil {
		return nil, r.fail(ctx, "sqlite.listTypes", err)
	}
	defer rows.Close()

	var out []core.AdditionalExpenseType
	for rows.Next() {
		var id, createdAt, updatedAt string
		var rec store.TypeRecord
		if err := rows.Scan(&id, &rec.Name, &rec.Description, &createdAt, &updatedAt); err != nil {
			return nil, r.fail(ctx, "sqlite.listTypes.scan", err)
		}
		out = append(out, store.DecodeType(id, rec, parseTime(createdAt), parseTime(updatedAt)))
	}
	return out, rows.Err()
}

func (r *SQLiteStores) CreateType(ctx context.Context, t core.AdditionalExpenseType) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO expense_types (id, name, description, created_at) VALUES (?, ?, ?, ?)",
		id, t.Name, t.Description, formatTime(time.Now()))
	if err != nil {
		return "", r.fail(ctx, "sqlite.createType", err)
	}
	return id, nil
}

func (r *SQLiteStores) UpdateType(ctx context.Context, t core.AdditionalExpenseType) error {
	if t.ID == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		"UPDATE expense_types SET name = ?, description = ?, updated_at = ? WHERE id = ?",
		t.Name, t.Description, formatTime(time.Now()), t.ID)
	if err != nil {
		return r.fail(ctx, "sqlite.updateType", err)
	}
	return nil
}

func (r *SQLiteStores) DeleteType(ctx context.Context, t core.AdditionalExpenseType) error {
	if t.ID == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM expense_types WHERE id = ?", t.ID); err != nil {
		return r.fail(ctx, "sqlite.deleteType", err)
	}
	return nil
}

func (r *SQLiteStores) SeedDefaultTypes(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expense_types").Scan(&count); err != nil {
		return 0, r.fail(ctx, "sqlite.seedTypes", err)
	}
	if count > 0 {
		return 0, nil
	}
	created := 0
	for _, t := range core.DefaultExpenseTypes() {
		if _, err := r.CreateType(ctx, t); err != nil {
			return created, err
		}
		created++
	}
	slog.InfoContext(ctx, "Seeded default expense types", "count", created)
	return created, nil
}

func (r *SQLiteStores) GetProfile(ctx context.Context, uid string) (core.UserProfile, error) {
	var rec store.ProfileRecord
	var createdAt, updatedAt, lastLoginAt string
	err := r.db.QueryRowContext(ctx, `SELECT uid, email, display_name, photo_url,
		theme, currency, language, created_at, updated_at, last_login_at
		FROM profiles WHERE uid = ?`, uid).Scan(
		&rec.UID, &rec.Email, &rec.DisplayName, &rec.PhotoURL,
		&rec.Theme, &rec.Currency, &rec.Language, &createdAt, &updatedAt, &lastLoginAt)
	if err == sql.ErrNoRows {
		return core.UserProfile{}, core.ErrProfileNotFound
	}
	if err != nil {
		return core.UserProfile{}, r.fail(ctx, "sqlite.getProfile", err)
	}
	return store.DecodeProfile(rec, parseTime(createdAt), parseTime(updatedAt), parseTime(lastLoginAt)), nil
}

func (r *SQLiteStores) PutProfile(ctx context.Context, p core.UserProfile) error {
	rec := store.EncodeProfile(p)
	now := formatTime(time.Now())
	_, err := r.db.ExecContext(ctx, `INSERT INTO profiles
		(uid, email, display_name, photo_url, theme, currency, language,
		 created_at, updated_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
		 email = excluded.email, display_name = excluded.display_name,
		 photo_url = excluded.photo_url, theme = excluded.theme,
		 currency = excluded.currency, language = excluded.language,
		 updated_at = excluded.updated_at, last_login_at = excluded.last_login_at`,
		rec.UID, rec.Email, rec.DisplayName, rec.PhotoURL, rec.Theme, rec.Currency, rec.Language,
		now, now, now)
	if err != nil {
		return r.fail(ctx, "sqlite.putProfile", err)
	}
	return nil
}

func (r *SQLiteStores) UpdateProfile(ctx context.Context, uid string, updates map[string]any) error {
	columns := map[string]string{
		"displayName": "display_name",
		"photoURL":    "photo_url",
		"theme":       "theme",
		"currency":    "currency",
		"language":    "language",
		"email":       "email",
	}
	set := "updated_at = ?"
	args := []any{formatTime(time.Now())}
	for k, v := range updates {
		col, ok := columns[k]
		if !ok {
			continue
		}
		set += ", " + col + " = ?"
		args = append(args, v)
	}
	args = append(args, uid)
	res, err := r.db.ExecContext(ctx, "UPDATE profiles SET "+set+" WHERE uid = ?", args...)
	if err != nil {
		return r.fail(ctx, "sqlite.updateProfile", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrProfileNotFound
	}
	return nil
}

func (r *SQLiteStores) ListProfiles(ctx context.Context) ([]core.UserProfile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT uid, email, display_name, photo_url,
		theme, currency, language, created_at, updated_at, last_login_at
		FROM profiles ORDER BY uid`)
	if err != nil {
		return nil, r.fail(ctx, "sqlite.listProfiles", err)
	}
	defer rows.Close()

	var out []core.UserProfile
	for rows.Next() {
		var rec store.ProfileRecord
		var createdAt, updatedAt, lastLoginAt string
		if err := rows.Scan(&rec.UID, &rec.Email, &rec.DisplayName, &rec.PhotoURL,
			&rec.Theme, &rec.Currency, &rec.Language, &createdAt, &updatedAt, &lastLoginAt); err != nil {
			return nil, r.fail(ctx, "sqlite.listProfiles.scan", err)
		}
		out = append(out, store.DecodeProfile(rec, parseTime(createdAt), parseTime(updatedAt), parseTime(lastLoginAt)))
	}
	return out, rows.Err()
}

func (r *SQLiteStores) fail(ctx context.Context, op string, err error) error {
	wrapped := store.WrapError(op, err)
	slog.ErrorContext(ctx, "SQLite operation failed", "op", op, "error", err)
	return wrapped
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (core.Expense, error) {
	var id, usersJSON, createdAt, updatedAt string
	var rec store.ExpenseRecord
	if err := row.Scan(&id, &rec.Date, &rec.House, &rec.TotalElect, &rec.RtAcFridge,
		&rec.PheaFridge, &rec.Mining, &rec.Electricity, &rec.Water, &rec.Waste,
		&rec.Additional, &usersJSON, &createdAt, &updatedAt); err != nil {
		return core.Expense{}, err
	}
	if usersJSON != "" {
		if err := json.Unmarshal([]byte(usersJSON), &rec.Users); err != nil {
			return core.Expense{}, fmt.Errorf("unmarshal users: %w", err)
		}
	}
	return store.DecodeExpense(id, rec, parseTime(createdAt), parseTime(updatedAt)), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
