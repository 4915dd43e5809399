package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/internal/testutil"
	"github.com/787516/Matrimonial/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionRepository_EntitlementFallsBackToFree(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedPlans(t, db)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	m := testutil.CreateMember(t, db, "meera", models.GenderFemale)

	ent, err := repo.GetEntitlement(ctx, m.User.ID, now)
	require.NoError(t, err)
	assert.True(t, ent.IsFreePlan)
	assert.Equal(t, models.PlanFree, ent.PlanName)
	assert.False(t, ent.ChatAllowed)
	assert.Equal(t, 1, ent.MaxProfileViews)
	assert.WithinDuration(t, now.AddDate(0, 0, -30), ent.PeriodStart, time.Second)

	gold, err := repo.GetPlanByName(ctx, models.PlanGold)
	require.NoError(t, err)
	_, err = repo.Subscribe(ctx, m.User.ID, gold, now)
	require.NoError(t, err)

	ent, err = repo.GetEntitlement(ctx, m.User.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ent.IsFreePlan)
	assert.Equal(t, models.PlanGold, ent.PlanName)
	assert.True(t, ent.ChatAllowed)
	assert.Equal(t, 300, ent.MaxProfileViews)

	// expired subscriptions no longer count
	ent, err = repo.GetEntitlement(ctx, m.User.ID, now.AddDate(0, 0, 181))
	require.NoError(t, err)
	assert.True(t, ent.IsFreePlan)
}

func TestSubscriptionRepository_MissingFreePlan(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSubscriptionRepository(db)

	m := testutil.CreateMember(t, db, "meera", models.GenderFemale)

	_, err := repo.GetEntitlement(context.Background(), m.User.ID, time.Now().UTC())
	assert.True(t, errors.Is(err, errors.ErrCodeInternalError), "got %v", err)
}

func TestSubscriptionRepository_ConsumeProfileView(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	viewer := testutil.CreateMember(t, db, "viewer", models.GenderFemale)
	first := testutil.CreateMember(t, db, "first", models.GenderMale)
	second := testutil.CreateMember(t, db, "second", models.GenderMale)

	ent := &models.Entitlement{MaxProfileViews: 1, PeriodStart: now.Add(-time.Hour)}

	charged, err := repo.ConsumeProfileView(ctx, viewer.User.ID, first.User.ID, ent, now)
	require.NoError(t, err)
	assert.True(t, charged)

	// same profile again is free
	charged, err = repo.ConsumeProfileView(ctx, viewer.User.ID, first.User.ID, ent, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, charged)

	_, err = repo.ConsumeProfileView(ctx, viewer.User.ID, second.User.ID, ent, now.Add(time.Minute))
	assert.True(t, errors.Is(err, errors.ErrCodeQuotaExceeded), "got %v", err)

	used, err := repo.CountViewsSince(ctx, viewer.User.ID, ent.PeriodStart)
	require.NoError(t, err)
	assert.EqualValues(t, 1, used)

	unlimited := &models.Entitlement{UnlimitedProfileViews: true, PeriodStart: now.Add(-time.Hour)}
	charged, err = repo.ConsumeProfileView(ctx, viewer.User.ID, second.User.ID, unlimited, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, charged)
}
