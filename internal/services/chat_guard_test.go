package services

import (
	"context"
	"testing"

	"github.com/787516/Matrimonial/internal/config"
	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatGuard_Policy(t *testing.T) {
	assert.Equal(t, config.ChatGatingStrict, NewChatGuard("strict", nil, nil).Policy())
	assert.Equal(t, config.ChatGatingHybrid, NewChatGuard("hybrid", nil, nil).Policy())
	assert.Equal(t, config.ChatGatingHybrid, NewChatGuard("", nil, nil).Policy())
	assert.Equal(t, config.ChatGatingHybrid, NewChatGuard("open", nil, nil).Policy())
}

func TestChatGuard_CanChatByPolicy(t *testing.T) {
	for _, tt := range []struct {
		policy string
		want   bool
	}{
		{config.ChatGatingHybrid, true},
		{config.ChatGatingStrict, false},
	} {
		t.Run(tt.policy, func(t *testing.T) {
			env := newTestEnvWithPolicy(t, tt.policy)
			ctx := context.Background()

			a := env.member(t, "asha", models.GenderFemale)
			b := env.member(t, "bharat", models.GenderMale)

			// an accepted chat without an accepted interest, as left behind
			// by records that predate the interest requirement
			require.NoError(t, env.relationships.Create(ctx, &models.RelationshipRequest{
				SenderID: a.User.ID, ReceiverID: b.User.ID,
				Type: models.RequestTypeChat, Status: models.RequestStatusAccepted,
			}))

			ok, err := env.guard.CanChat(ctx, a.User.ID, b.User.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestChatGuard_CheckChatAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.member(t, "asha", models.GenderFemale)
	b := env.member(t, "bharat", models.GenderMale)
	c := env.member(t, "chetan", models.GenderMale)

	err := env.guard.CheckChatAccess(ctx, a.User.ID, a.User.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeSelfReference), "got %v", err)

	env.acceptedInterest(t, a.User.ID, b.User.ID)

	// free plan does not include chat
	err = env.guard.CheckChatAccess(ctx, a.User.ID, b.User.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeNotEntitled), "got %v", err)

	env.subscribe(t, a.User.ID, models.PlanGold)
	require.NoError(t, env.guard.CheckChatAccess(ctx, a.User.ID, b.User.ID))

	err = env.guard.CheckChatAccess(ctx, a.User.ID, c.User.ID)
	assert.True(t, errors.Is(err, errors.ErrCodePrecondition), "no interest: got %v", err)

	_, err = env.ledger.BlockUser(ctx, b.User.ID, a.User.ID)
	require.NoError(t, err)
	err = env.guard.CheckChatAccess(ctx, a.User.ID, b.User.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeBlocked), "got %v", err)
}

func TestChatGuard_ChargeProfileView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	viewer := env.member(t, "asha", models.GenderFemale)
	first := env.member(t, "bharat", models.GenderMale)
	second := env.member(t, "chetan", models.GenderMale)

	charged, err := env.guard.ChargeProfileView(ctx, viewer.User.ID, viewer.User.ID)
	require.NoError(t, err)
	assert.False(t, charged, "own profile is free")

	charged, err = env.guard.ChargeProfileView(ctx, viewer.User.ID, first.User.ID)
	require.NoError(t, err)
	assert.True(t, charged)

	charged, err = env.guard.ChargeProfileView(ctx, viewer.User.ID, first.User.ID)
	require.NoError(t, err)
	assert.False(t, charged, "re-viewing within the period is free")

	// FREE allows one distinct profile per period
	_, err = env.guard.ChargeProfileView(ctx, viewer.User.ID, second.User.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeQuotaExceeded), "got %v", err)

	env.subscribe(t, viewer.User.ID, models.PlanPlatinum)
	charged, err = env.guard.ChargeProfileView(ctx, viewer.User.ID, second.User.ID)
	require.NoError(t, err)
	assert.True(t, charged)
}
