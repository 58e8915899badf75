package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atinyakov/FinTrack/internal/db"
	"github.com/atinyakov/FinTrack/internal/models"
	"github.com/atinyakov/FinTrack/internal/pagination"
)

// projection lists the columns returned to clients, in models.Entry scan order.
const projection = "id, title, description, value, transaction_date"

// patchColumns is the complete set of columns a partial update may touch.
// SET clauses are built from this list only, never from client input.
var patchColumns = []struct {
	name  string
	value func(models.EntryPatch) (any, bool)
}{
	{"title", func(p models.EntryPatch) (any, bool) {
		if p.Title == nil {
			return nil, false
		}
		return *p.Title, true
	}},
	{"description", func(p models.EntryPatch) (any, bool) {
		if p.Description == nil {
			return nil, false
		}
		return *p.Description, true
	}},
	{"value", func(p models.EntryPatch) (any, bool) {
		if p.Value == nil {
			return nil, false
		}
		return *p.Value, true
	}},
	{"transaction_date", func(p models.EntryPatch) (any, bool) {
		if p.TransactionDate == nil {
			return nil, false
		}
		return *p.TransactionDate, true
	}},
}

// PostgresEntryRepository stores one kind of financial entry. Every query
// is restricted to the owner's rows.
type PostgresEntryRepository struct {
	gw  *db.Gateway
	res models.Resource
}

// NewPostgresEntryRepository creates a repository for the entries of res.
func NewPostgresEntryRepository(gw *db.Gateway, res models.Resource) *PostgresEntryRepository {
	return &PostgresEntryRepository{gw: gw, res: res}
}

// Create inserts an entry owned by ownerID and returns its projection.
func (r *PostgresEntryRepository) Create(ctx context.Context, ownerID int64, f models.EntryFields) (*models.Entry, error) {
	var e models.Entry
	err := r.gw.Write(ctx, func(ctx context.Context, q db.Querier) error {
		row := q.QueryRowContext(ctx,
			"INSERT INTO "+r.res.Table+" (user_id, title, description, value, transaction_date) "+
				"VALUES ($1, $2, $3, $4, $5) RETURNING "+projection,
			ownerID, f.Title, f.Description, f.Value, f.TransactionDate,
		)
		return scanEntry(row, &e)
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", r.res.Kind, err)
	}
	return &e, nil
}

// List returns one page of the owner's entries matching filter, newest
// first, together with the number of entries matching filter overall.
// Both come from the same predicate in one snapshot. A page past the end
// is empty and skips the page query.
func (r *PostgresEntryRepository) List(ctx context.Context, ownerID int64, filter models.ListFilter) ([]models.Entry, int, error) {
	where, args := ownerFilter(ownerID, filter)
	offset := pagination.Offset(filter.Page, filter.PageSize)

	items := []models.Entry{}
	var total int
	err := r.gw.Snapshot(ctx, func(ctx context.Context, q db.Querier) error {
		if err := q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM "+r.res.Table+" WHERE "+where,
			args...,
		).Scan(&total); err != nil {
			return fmt.Errorf("count: %w", err)
		}
		if offset >= total {
			return nil
		}

		n := len(args)
		pageArgs := append(args[:n:n], filter.PageSize, offset)
		rows, err := q.QueryContext(ctx,
			"SELECT "+projection+" FROM "+r.res.Table+" WHERE "+where+
				" ORDER BY transaction_date DESC, id DESC"+
				" LIMIT $"+strconv.Itoa(n+1)+" OFFSET $"+strconv.Itoa(n+2),
			pageArgs...,
		)
		if err != nil {
			return fmt.Errorf("select page: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var e models.Entry
			if err := scanEntry(rows, &e); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			items = append(items, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.res.Kind, err)
	}
	return items, total, nil
}

// GetByID returns the entry id if ownerID owns it, otherwise models.ErrNotFound.
func (r *PostgresEntryRepository) GetByID(ctx context.Context, ownerID, id int64) (*models.Entry, error) {
	var e models.Entry
	err := r.gw.Read(ctx, func(ctx context.Context, q db.Querier) error {
		return r.selectOwned(ctx, q, ownerID, id, &e)
	})
	if err != nil {
		return nil, r.wrap("get", err)
	}
	return &e, nil
}

// Update replaces every mutable field of an owned entry.
func (r *PostgresEntryRepository) Update(ctx context.Context, ownerID, id int64, f models.EntryFields) (*models.Entry, error) {
	var e models.Entry
	err := r.gw.Write(ctx, func(ctx context.Context, q db.Querier) error {
		if err := r.checkOwned(ctx, q, ownerID, id); err != nil {
			return err
		}
		row := q.QueryRowContext(ctx,
			"UPDATE "+r.res.Table+" SET title = $1, description = $2, value = $3, transaction_date = $4"+
				" WHERE id = $5 AND user_id = $6 RETURNING "+projection,
			f.Title, f.Description, f.Value, f.TransactionDate, id, ownerID,
		)
		return scanEntry(row, &e)
	})
	if err != nil {
		return nil, r.wrap("update", err)
	}
	return &e, nil
}

// Patch changes only the fields set in p. An empty patch returns the
// current entry without writing.
func (r *PostgresEntryRepository) Patch(ctx context.Context, ownerID, id int64, p models.EntryPatch) (*models.Entry, error) {
	var e models.Entry
	err := r.gw.Write(ctx, func(ctx context.Context, q db.Querier) error {
		if err := r.selectOwned(ctx, q, ownerID, id, &e); err != nil {
			return err
		}
		if p.IsEmpty() {
			return nil
		}

		sets := make([]string, 0, len(patchColumns))
		args := make([]any, 0, len(patchColumns)+2)
		for _, col := range patchColumns {
			v, ok := col.value(p)
			if !ok {
				continue
			}
			args = append(args, v)
			sets = append(sets, col.name+" = $"+strconv.Itoa(len(args)))
		}

		args = append(args, id, ownerID)
		row := q.QueryRowContext(ctx,
			"UPDATE "+r.res.Table+" SET "+strings.Join(sets, ", ")+
				" WHERE id = $"+strconv.Itoa(len(args)-1)+" AND user_id = $"+strconv.Itoa(len(args))+
				" RETURNING "+projection,
			args...,
		)
		return scanEntry(row, &e)
	})
	if err != nil {
		return nil, r.wrap("patch", err)
	}
	return &e, nil
}

// Delete removes an owned entry. It reports false when there was nothing
// to remove.
func (r *PostgresEntryRepository) Delete(ctx context.Context, ownerID, id int64) (bool, error) {
	var removed bool
	err := r.gw.Write(ctx, func(ctx context.Context, q db.Querier) error {
		if err := r.checkOwned(ctx, q, ownerID, id); err != nil {
			return err
		}
		res, err := q.ExecContext(ctx,
			"DELETE FROM "+r.res.Table+" WHERE id = $1 AND user_id = $2",
			id, ownerID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		removed = n > 0
		return nil
	})
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", r.res.Kind, err)
	}
	return removed, nil
}

func (r *PostgresEntryRepository) selectOwned(ctx context.Context, q db.Querier, ownerID, id int64, e *models.Entry) error {
	err := scanEntry(q.QueryRowContext(ctx,
		"SELECT "+projection+" FROM "+r.res.Table+" WHERE id = $1 AND user_id = $2",
		id, ownerID,
	), e)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

func (r *PostgresEntryRepository) checkOwned(ctx context.Context, q db.Querier, ownerID, id int64) error {
	var found int64
	err := q.QueryRowContext(ctx,
		"SELECT id FROM "+r.res.Table+" WHERE id = $1 AND user_id = $2",
		id, ownerID,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check owner: %w", err)
	}
	return nil
}

func (r *PostgresEntryRepository) wrap(op string, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrNotFound
	}
	return fmt.Errorf("%s %s: %w", op, r.res.Kind, err)
}

// ownerFilter builds the WHERE predicate shared by the count and page queries.
func ownerFilter(ownerID int64, f models.ListFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{ownerID}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		conds = append(conds, "transaction_date >= $"+strconv.Itoa(len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		conds = append(conds, "transaction_date <= $"+strconv.Itoa(len(args)))
	}
	return strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner, e *models.Entry) error {
	return row.Scan(&e.ID, &e.Title, &e.Description, &e.Value, &e.TransactionDate)
}
