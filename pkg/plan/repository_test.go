package plan

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prodplan/prodplan/internal/test_utils"
	"github.com/prodplan/prodplan/pkg/schedule"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, Repository) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		require.NoError(t, pgContainer.Restore(ctx))
	})
	return ctx, NewRepo(db)
}

func storedPlan(name string, updatedAt time.Time) Plan {
	plan := bracketPlan(2)
	plan.Id = uuid.New()
	plan.Name = name
	plan.Capacity.ShiftDurationHours = 7
	plan.RemainingStock = 900
	plan.CreatedAt = updatedAt
	plan.UpdatedAt = updatedAt
	return plan
}

func TestRepositoryImpl_CreatePlan(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)
	plan := storedPlan("Bracket March", startTime)
	slots := schedule.NewGenerator(schedule.Config{HorizonDays: 2, OvertimeEvery: 3, OvertimeLeadDays: 2}).
		Generate(plan.Capacity, schedule.Demand{1: 100}).Slots
	slots[0].Notes = "die change"
	slots[0].Status = schedule.StatusDisrupted

	// when
	_, err := repo.CreatePlan(ctx, plan)
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceSlots(ctx, plan.Id, slots))

	// then
	stored, err := repo.GetPlan(ctx, plan.Id)
	require.NoError(t, err)
	assert.Equal(t, plan.Name, stored.Name)
	assert.Equal(t, plan.Capacity, stored.Capacity)
	assert.Equal(t, 900, stored.RemainingStock)
	assert.True(t, plan.CreatedAt.Equal(stored.CreatedAt))
	assert.Equal(t, slots, stored.Slots)
}

func TestRepositoryImpl_ReplaceSlots(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	plan := storedPlan("Bracket March", startTime)
	_, err := repo.CreatePlan(ctx, plan)
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceSlots(ctx, plan.Id, []schedule.Slot{
		{Id: "1-1", Day: 1, Shift: schedule.ShiftOne, Status: schedule.StatusNormal},
		{Id: "1-2", Day: 1, Shift: schedule.ShiftTwo, Status: schedule.StatusNormal},
	}))

	replacement := []schedule.Slot{
		{Id: "1-1", Day: 1, Shift: schedule.ShiftOne, Pcs: 5, PlanningPcs: 5, Status: schedule.StatusCompleted},
		{Id: "ot-1", Day: 3, Shift: schedule.ShiftOvertime, Pcs: 4, OvertimePcs: 4, OvertimeHours: 0.5, TriggerDay: 1, Status: schedule.StatusNormal},
	}
	require.NoError(t, repo.ReplaceSlots(ctx, plan.Id, replacement))

	stored, err := repo.GetPlan(ctx, plan.Id)
	require.NoError(t, err)
	assert.Equal(t, replacement, stored.Slots)
}

func TestRepositoryImpl_UpdatePlan(t *testing.T) {
	t.Run("should update the plan header", func(t *testing.T) {
		ctx, repo := setupTestRepository(t)
		plan := storedPlan("Bracket March", startTime)
		_, err := repo.CreatePlan(ctx, plan)
		require.NoError(t, err)

		plan.Name = "Bracket April"
		plan.HorizonDays = 20
		plan.UpdatedAt = startTime.Add(time.Hour)
		_, err = repo.UpdatePlan(ctx, plan)
		require.NoError(t, err)

		stored, err := repo.GetPlan(ctx, plan.Id)
		require.NoError(t, err)
		assert.Equal(t, "Bracket April", stored.Name)
		assert.Equal(t, 20, stored.HorizonDays)
		assert.True(t, startTime.Add(time.Hour).Equal(stored.UpdatedAt))
	})

	t.Run("should fail for an unknown plan", func(t *testing.T) {
		ctx, repo := setupTestRepository(t)

		_, err := repo.UpdatePlan(ctx, storedPlan("Ghost", startTime))

		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
}

func TestRepositoryImpl_ListPlans(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	older := storedPlan("Older", startTime)
	newer := storedPlan("Newer", startTime.Add(time.Hour))
	_, err := repo.CreatePlan(ctx, older)
	require.NoError(t, err)
	_, err = repo.CreatePlan(ctx, newer)
	require.NoError(t, err)

	plans, err := repo.ListPlans(ctx)

	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, newer.Id, plans[0].Id)
	assert.Equal(t, older.Id, plans[1].Id)
}

func TestRepositoryImpl_DeletePlan(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	plan := storedPlan("Bracket March", startTime)
	_, err := repo.CreatePlan(ctx, plan)
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceSlots(ctx, plan.Id, []schedule.Slot{{Id: "1-1", Day: 1, Shift: schedule.ShiftOne, Status: schedule.StatusNormal}}))

	require.NoError(t, repo.DeletePlan(ctx, plan.Id))

	_, err = repo.GetPlan(ctx, plan.Id)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	assert.ErrorIs(t, repo.DeletePlan(ctx, plan.Id), ErrPlanNotFound)
}

func TestRepositoryImpl_WithTransaction(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	plan := storedPlan("Bracket March", startTime)

	err := repo.WithTransaction(ctx, func(txRepo Repository) error {
		if _, err := txRepo.CreatePlan(ctx, plan); err != nil {
			return err
		}
		return assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	_, err = repo.GetPlan(ctx, plan.Id)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}
