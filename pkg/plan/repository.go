package plan

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prodplan/prodplan/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

var ErrPlanNotFound = errors.New("plan not found")

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	// ListPlans returns every plan without its slots, most recently updated first.
	ListPlans(ctx context.Context) ([]Plan, error)
	GetPlan(ctx context.Context, planId uuid.UUID) (Plan, error)
	CreatePlan(ctx context.Context, plan Plan) (Plan, error)
	// UpdatePlan stores the plan header. Slots are stored with ReplaceSlots.
	UpdatePlan(ctx context.Context, plan Plan) (Plan, error)
	ReplaceSlots(ctx context.Context, planId uuid.UUID, slots []schedule.Slot) error
	DeletePlan(ctx context.Context, planId uuid.UUID) error
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
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
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
		// no-op once committed
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

const planColumns = `id, name, part_name, customer_name, time_per_piece_sec, manpower_count,
				shift_duration_hours, planning_hours, overtime_hours, initial_stock, horizon_days,
				remaining_stock, pending_shortfall, created_at, updated_at`

func scanPlan(row pgx.Row) (Plan, error) {
	var plan Plan
	err := row.Scan(
		&plan.Id,
		&plan.Name,
		&plan.PartName,
		&plan.CustomerName,
		&plan.Capacity.TimePerPiece,
		&plan.Capacity.ManpowerCount,
		&plan.Capacity.ShiftDurationHours,
		&plan.Capacity.PlanningHours,
		&plan.Capacity.OvertimeHours,
		&plan.Capacity.InitialStock,
		&plan.HorizonDays,
		&plan.RemainingStock,
		&plan.PendingShortfall,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	return plan, err
}

func (r *repositoryImpl) ListPlans(ctx context.Context) ([]Plan, error) {
	query := `SELECT ` + planColumns + ` FROM production_plan ORDER BY updated_at DESC, name`
	rows, err := r.getQueryer().Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query plans: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	plans := make([]Plan, 0)
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning plan: %w", err)
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func (r *repositoryImpl) GetPlan(ctx context.Context, planId uuid.UUID) (Plan, error) {
	query := `SELECT ` + planColumns + ` FROM production_plan WHERE id = $1`
	plan, err := scanPlan(r.getQueryer().QueryRow(ctx, query, planId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Plan{}, ErrPlanNotFound
		}
		return Plan{}, fmt.Errorf("could not query plan: %w", err)
	}

	slots, err := r.getSlots(ctx, planId)
	if err != nil {
		return Plan{}, err
	}
	plan.Slots = slots
	return plan, nil
}

func (r *repositoryImpl) getSlots(ctx context.Context, planId uuid.UUID) ([]schedule.Slot, error) {
	query := `SELECT slot_id, day, shift, delivery, pcs, planning_pcs, planning_hours, overtime_pcs,
				overtime_hours, actual_pcs, status, notes, adjustment, trigger_day
			  FROM schedule_slot
			  WHERE plan_id = $1`
	rows, err := r.getQueryer().Query(ctx, query, planId)
	if err != nil {
		return nil, fmt.Errorf("could not query slots: %w", err)
	}
	defer rows.Close()

	var slots []schedule.Slot
	for rows.Next() {
		var slot schedule.Slot
		var shift, status string
		if err := rows.Scan(
			&slot.Id,
			&slot.Day,
			&shift,
			&slot.Delivery,
			&slot.Pcs,
			&slot.PlanningPcs,
			&slot.PlanningHours,
			&slot.OvertimePcs,
			&slot.OvertimeHours,
			&slot.ActualPcs,
			&status,
			&slot.Notes,
			&slot.Adjustment,
			&slot.TriggerDay,
		); err != nil {
			return nil, fmt.Errorf("error scanning slot: %w", err)
		}
		slot.Shift = schedule.Shift(shift)
		slot.Status = schedule.Status(status)
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	schedule.Sort(slots)
	return slots, nil
}

func (r *repositoryImpl) CreatePlan(ctx context.Context, plan Plan) (Plan, error) {
	query := `INSERT INTO production_plan (` + planColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.getQueryer().Exec(ctx, query,
		plan.Id,
		plan.Name,
		plan.PartName,
		plan.CustomerName,
		plan.Capacity.TimePerPiece,
		plan.Capacity.ManpowerCount,
		plan.Capacity.ShiftDurationHours,
		plan.Capacity.PlanningHours,
		plan.Capacity.OvertimeHours,
		plan.Capacity.InitialStock,
		plan.HorizonDays,
		plan.RemainingStock,
		plan.PendingShortfall,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		err := fmt.Errorf("could not create plan: %w", err)
		log.Error(err)
		return Plan{}, err
	}
	return plan, nil
}

func (r *repositoryImpl) UpdatePlan(ctx context.Context, plan Plan) (Plan, error) {
	query := `UPDATE production_plan
			  SET name = $2, part_name = $3, customer_name = $4, time_per_piece_sec = $5,
			      manpower_count = $6, shift_duration_hours = $7, planning_hours = $8,
			      overtime_hours = $9, initial_stock = $10, horizon_days = $11,
			      remaining_stock = $12, pending_shortfall = $13, updated_at = $14
			  WHERE id = $1`
	tag, err := r.getQueryer().Exec(ctx, query,
		plan.Id,
		plan.Name,
		plan.PartName,
		plan.CustomerName,
		plan.Capacity.TimePerPiece,
		plan.Capacity.ManpowerCount,
		plan.Capacity.ShiftDurationHours,
		plan.Capacity.PlanningHours,
		plan.Capacity.OvertimeHours,
		plan.Capacity.InitialStock,
		plan.HorizonDays,
		plan.RemainingStock,
		plan.PendingShortfall,
		plan.UpdatedAt,
	)
	if err != nil {
		err := fmt.Errorf("could not update plan: %w", err)
		log.Error(err)
		return Plan{}, err
	}
	if tag.RowsAffected() == 0 {
		return Plan{}, ErrPlanNotFound
	}
	return plan, nil
}

// ReplaceSlots deletes the stored slots of the plan and inserts slots in one batch.
func (r *repositoryImpl) ReplaceSlots(ctx context.Context, planId uuid.UUID, slots []schedule.Slot) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM schedule_slot WHERE plan_id = $1`, planId)
	for _, slot := range slots {
		batch.Queue(`INSERT INTO schedule_slot (plan_id, slot_id, day, shift, delivery, pcs, planning_pcs,
						planning_hours, overtime_pcs, overtime_hours, actual_pcs, status, notes, adjustment, trigger_day)
					 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			planId,
			slot.Id,
			slot.Day,
			string(slot.Shift),
			slot.Delivery,
			slot.Pcs,
			slot.PlanningPcs,
			slot.PlanningHours,
			slot.OvertimePcs,
			slot.OvertimeHours,
			slot.ActualPcs,
			string(slot.Status),
			slot.Notes,
			slot.Adjustment,
			slot.TriggerDay,
		)
	}

	results := r.getQueryer().SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("could not store slots: %w", err)
		}
	}
	return results.Close()
}

func (r *repositoryImpl) DeletePlan(ctx context.Context, planId uuid.UUID) error {
	tag, err := r.getQueryer().Exec(ctx, `DELETE FROM production_plan WHERE id = $1`, planId)
	if err != nil {
		return fmt.Errorf("could not delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}
