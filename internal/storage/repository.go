package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"budgetbook/internal/core"

	_ "modernc.org/sqlite"
)

const (
	recordsTable = "records"
	budgetsTable = "budgets"
)

var (
	recordColumns = []string{"id", "type", "occurred_at", "description", "amount_cents", "category", "created_at"}
	budgetColumns = []string{"id", "name", "kind", "limit_cents", "category", "anchor", "last_rolled_start", "created_at"}
)

type SQLiteRepository struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
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
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(sq.Question),
		now: time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateRecord stores rec and returns it with ID and CreatedAt set.
func (r *SQLiteRepository) CreateRecord(ctx context.Context, rec core.Record) (core.Record, error) {
	rec.CreatedAt = r.now().UTC().Truncate(time.Second)

	stmt, args, err := r.sb.Insert(recordsTable).
		Columns("type", "occurred_at", "description", "amount_cents", "category", "created_at").
		Values(string(rec.Type), rec.Date.Unix(), rec.Description, rec.Amount.Cents, rec.Category, rec.CreatedAt.Unix()).
		ToSql()
	if err != nil {
		return core.Record{}, fmt.Errorf("build insert record: %w", err)
	}

	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Record{}, fmt.Errorf("record id: %w", err)
	}
	rec.ID = id

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", rec.ID,
		"type", rec.Type,
		"amount_cents", rec.Amount.Cents,
		"category", rec.Category,
		"date", rec.Date.Format(time.DateOnly))

	return rec, nil
}

// GetRecord returns a live record by ID or core.ErrNotFound.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id int64) (core.Record, error) {
	stmt, args, err := r.sb.Select(recordColumns...).
		From(recordsTable).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return core.Record{}, fmt.Errorf("build get record: %w", err)
	}

	rec, err := scanRecord(r.db.QueryRowContext(ctx, stmt, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, fmt.Errorf("record %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// SoftDeleteRecord hides a record from every query.
func (r *SQLiteRepository) SoftDeleteRecord(ctx context.Context, id int64) error {
	stmt, args, err := r.sb.Update(recordsTable).
		Set("deleted_at", r.now().Unix()).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete record: %w", err)
	}

	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %d: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Record soft deleted", "id", id)
	return nil
}

// ListRecords returns live records inside rng, oldest first.
func (r *SQLiteRepository) ListRecords(ctx context.Context, rng core.DateRange) ([]core.Record, error) {
	stmt, args, err := r.sb.Select(recordColumns...).
		From(recordsTable).
		Where(sq.Eq{"deleted_at": nil}).
		Where(sq.GtOrEq{"occurred_at": rng.Start.Unix()}).
		Where(sq.LtOrEq{"occurred_at": rng.End.Unix()}).
		OrderBy("occurred_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list records: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SumByType totals the amounts of one record type inside rng.
// An empty category sums every category.
func (r *SQLiteRepository) SumByType(ctx context.Context, rng core.DateRange, t core.RecordType, category string) (int64, error) {
	q := r.inRange(r.sb.Select("COALESCE(SUM(amount_cents), 0)"), rng).
		Where(sq.Eq{"type": string(t)})
	if category != "" {
		q = q.Where(sq.Eq{"category": category})
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sum: %w", err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum %s: %w", t, err)
	}
	return total, nil
}

// CategorySums returns expense totals per category inside rng, largest first.
func (r *SQLiteRepository) CategorySums(ctx context.Context, rng core.DateRange, category string) ([]core.CategoryAmount, error) {
	q := r.inRange(r.sb.Select("category", "SUM(amount_cents) AS total"), rng).
		Where(sq.Eq{"type": string(core.Expense)}).
		GroupBy("category").
		OrderBy("total DESC", "category ASC")
	if category != "" {
		q = q.Where(sq.Eq{"category": category})
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category sums: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("category sums: %w", err)
	}
	defer rows.Close()

	var sums []core.CategoryAmount
	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Name, &ca.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		sums = append(sums, ca)
	}
	return sums, rows.Err()
}

func (r *SQLiteRepository) inRange(q sq.SelectBuilder, rng core.DateRange) sq.SelectBuilder {
	return q.From(recordsTable).
		Where(sq.Eq{"deleted_at": nil}).
		Where(sq.GtOrEq{"occurred_at": rng.Start.Unix()}).
		Where(sq.LtOrEq{"occurred_at": rng.End.Unix()})
}

// CreateBudget stores b, assigning an ID when it has none.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = r.now().UTC().Truncate(time.Second)

	stmt, args, err := r.sb.Insert(budgetsTable).
		Columns(budgetColumns...).
		Values(b.ID.String(), b.Name, string(b.Kind), b.Limit.Cents, b.Category,
			nullUnix(b.Anchor), nullUnix(b.LastRolledStart), b.CreatedAt.Unix()).
		ToSql()
	if err != nil {
		return core.Budget{}, fmt.Errorf("build insert budget: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, stmt, args...); err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved to SQLite",
		"id", b.ID,
		"name", b.Name,
		"kind", b.Kind,
		"limit_cents", b.Limit.Cents)

	return b, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id uuid.UUID) (core.Budget, error) {
	stmt, args, err := r.sb.Select(budgetColumns...).
		From(budgetsTable).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return core.Budget{}, fmt.Errorf("build get budget: %w", err)
	}

	b, err := scanBudget(r.db.QueryRowContext(ctx, stmt, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// ListBudgets returns every budget ordered by name.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	stmt, args, err := r.sb.Select(budgetColumns...).
		From(budgetsTable).
		OrderBy("name ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list budgets: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	stmt, args, err := r.sb.Delete(budgetsTable).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete budget: %w", err)
	}

	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Budget deleted", "id", id)
	return nil
}

// UpdateLastRolledStart records the start of the newest period rolled over for a budget.
func (r *SQLiteRepository) UpdateLastRolledStart(ctx context.Context, id uuid.UUID, start time.Time) error {
	stmt, args, err := r.sb.Update(budgetsTable).
		Set("last_rolled_start", start.Unix()).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update rollover: %w", err)
	}

	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update rollover: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.Record, error) {
	var (
		rec        core.Record
		typ        string
		occurredAt int64
		createdAt  int64
	)
	if err := row.Scan(&rec.ID, &typ, &occurredAt, &rec.Description, &rec.Amount.Cents, &rec.Category, &createdAt); err != nil {
		return core.Record{}, err
	}
	rec.Type = core.RecordType(typ)
	rec.Date = time.Unix(occurredAt, 0).UTC()
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	return rec, nil
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b          core.Budget
		id, kind   string
		anchor     sql.NullInt64
		lastRolled sql.NullInt64
		createdAt  int64
	)
	if err := row.Scan(&id, &b.Name, &kind, &b.Limit.Cents, &b.Category, &anchor, &lastRolled, &createdAt); err != nil {
		return core.Budget{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse budget id %q: %w", id, err)
	}
	b.ID = parsed
	b.Kind = core.PeriodKind(kind)
	b.Anchor = fromNullUnix(anchor)
	b.LastRolledStart = fromNullUnix(lastRolled)
	b.CreatedAt = time.Unix(createdAt, 0).UTC()
	return b, nil
}

func nullUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func fromNullUnix(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return time.Unix(n.Int64, 0).UTC()
}
