package material

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	// GetInflow returns the stored cells; matrices are as long as the last stored day.
	GetInflow(ctx context.Context, planId uuid.UUID) (Inflow, error)
	SetCell(ctx context.Context, planId uuid.UUID, cell Cell) error
	// DeleteFromDay removes every cell of the plan on day or later and returns how many were removed.
	DeleteFromDay(ctx context.Context, planId uuid.UUID, day int) (int, error)
}

type repositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepo(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) getQueryer() interface {
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&repositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *repositoryImpl) GetInflow(ctx context.Context, planId uuid.UUID) (Inflow, error) {
	query := `SELECT kind, day, shift, quantity
			  FROM material_inflow
			  WHERE plan_id = $1
			  ORDER BY kind, day, shift`
	rows, err := r.getQueryer().Query(ctx, query, planId)
	if err != nil {
		return Inflow{}, fmt.Errorf("could not query material inflow: %w", err)
	}
	defer rows.Close()

	var cells []Cell
	for rows.Next() {
		var cell Cell
		var kind string
		var quantity int
		if err := rows.Scan(&kind, &cell.Day, &cell.Shift, &quantity); err != nil {
			return Inflow{}, fmt.Errorf("error scanning material row: %w", err)
		}
		cell.Kind = Kind(kind)
		cell.Quantity = &quantity
		cells = append(cells, cell)
	}
	if err := rows.Err(); err != nil {
		return Inflow{}, err
	}
	return inflowFromCells(planId, cells), nil
}

func (r *repositoryImpl) SetCell(ctx context.Context, planId uuid.UUID, cell Cell) error {
	if cell.Quantity == nil {
		query := `DELETE FROM material_inflow WHERE plan_id = $1 AND kind = $2 AND day = $3 AND shift = $4`
		if _, err := r.getQueryer().Exec(ctx, query, planId, string(cell.Kind), cell.Day, cell.Shift); err != nil {
			return fmt.Errorf("could not clear material cell: %w", err)
		}
		return nil
	}

	query := `INSERT INTO material_inflow (plan_id, kind, day, shift, quantity)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (plan_id, kind, day, shift) DO UPDATE SET quantity = EXCLUDED.quantity`
	_, err := r.getQueryer().Exec(ctx, query, planId, string(cell.Kind), cell.Day, cell.Shift, *cell.Quantity)
	if err != nil {
		return fmt.Errorf("could not store material cell: %w", err)
	}
	return nil
}

func (r *repositoryImpl) DeleteFromDay(ctx context.Context, planId uuid.UUID, day int) (int, error) {
	query := `DELETE FROM material_inflow WHERE plan_id = $1 AND day >= $2`
	tag, err := r.getQueryer().Exec(ctx, query, planId, day)
	if err != nil {
		return 0, fmt.Errorf("could not delete material cells: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
