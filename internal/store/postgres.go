// Package store implements core.Store on PostgreSQL using pgx.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/placemap/internal/core"
)

// maxParams is the bind parameter limit of the Postgres extended protocol.
// Batches needing more are split into chunks inside one transaction.
var maxParams = 65535

const (
	categoryColumns = "name, icon, color"
	placeColumns    = "name, description, website, category, image, address, phone, latitude, longitude"

	categoryParams = 3
	placeParams    = 9
)

// DBTX is the subset of *pgxpool.Pool the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres is a core.Store backed by a connection pool.
type Postgres struct {
	db DBTX
}

// New wraps db, normally a *pgxpool.Pool.
func New(db DBTX) *Postgres {
	return &Postgres{db: db}
}

var _ core.Store = (*Postgres)(nil)

// Ping checks the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	if pinger, ok := p.db.(interface{ Ping(context.Context) error }); ok {
		return pinger.Ping(ctx)
	}
	var one int
	return p.db.QueryRow(ctx, "SELECT 1").Scan(&one)
}

// InsertCategories writes categories, skipping names that already exist.
func (p *Postgres) InsertCategories(ctx context.Context, records []core.CategoryRecord) (int64, error) {
	args := make([]any, 0, len(records)*categoryParams)
	for _, r := range records {
		args = append(args, r.Name, r.Icon, r.Color)
	}
	return p.insertBatch(ctx, "categories", categoryColumns, "ON CONFLICT (name) DO NOTHING", categoryParams, args)
}

// InsertPlaces writes places, skipping rows that collide with a unique key.
func (p *Postgres) InsertPlaces(ctx context.Context, records []core.PlaceRecord) (int64, error) {
	args := make([]any, 0, len(records)*placeParams)
	for _, r := range records {
		args = append(args,
			r.Name, r.Description, r.Website, r.Category, r.Image,
			r.Address, r.Phone, r.Latitude, r.Longitude,
		)
	}
	return p.insertBatch(ctx, "locations", placeColumns, "ON CONFLICT DO NOTHING", placeParams, args)
}

// insertBatch runs a multi-row INSERT. A batch that fits one statement runs
// alone; larger batches are chunked in a transaction so a failure leaves
// nothing behind.
func (p *Postgres) insertBatch(ctx context.Context, table, columns, conflict string, width int, args []any) (int64, error) {
	if len(args) == 0 {
		return 0, nil
	}

	chunk := (maxParams / width) * width
	if len(args) <= chunk {
		tag, err := p.db.Exec(ctx, insertSQL(table, columns, conflict, width, len(args)/width), args...)
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", table, err)
		}
		return tag.RowsAffected(), nil
	}

	var total int64
	err := pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		for start := 0; start < len(args); start += chunk {
			end := min(start+chunk, len(args))
			part := args[start:end]
			tag, err := tx.Exec(ctx, insertSQL(table, columns, conflict, width, len(part)/width), part...)
			if err != nil {
				return err
			}
			total += tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	return total, nil
}

// insertSQL builds "INSERT INTO t (cols) VALUES ($1,$2),($3,$4) <conflict>".
func insertSQL(table, columns, conflict string, width, rows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, columns)

	n := 1
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		for j := 0; j < width; j++ {
			if j > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "$%d", n)
			n++
		}
		b.WriteByte(')')
	}

	b.WriteByte(' ')
	b.WriteString(conflict)
	return b.String()
}

// ExistingCategoryNames returns the subset of names already stored.
func (p *Postgres) ExistingCategoryNames(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var existing []string
	err := p.db.QueryRow(ctx,
		"SELECT COALESCE(array_agg(name), '{}') FROM categories WHERE name = ANY($1)",
		names,
	).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return existing, nil
}

// AppendImportLog inserts one import_logs row.
func (p *Postgres) AppendImportLog(ctx context.Context, e core.ImportLogEntry) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO import_logs (id, table_name, file_name, success_count, error_count, import_type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.TableName, e.FileName, e.SuccessCount, e.ErrorCount, e.ImportType, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert import log: %w", err)
	}
	return nil
}

// ListImportLogs returns up to limit entries, newest first.
func (p *Postgres) ListImportLogs(ctx context.Context, limit int) ([]core.ImportLogEntry, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, table_name, file_name, success_count, error_count, import_type, created_at
		 FROM import_logs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select import logs: %w", err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[core.ImportLogEntry])
	if err != nil {
		return nil, fmt.Errorf("scan import logs: %w", err)
	}
	return entries, nil
}
