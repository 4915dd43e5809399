package services

import (
	"context"
	"testing"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewNotificationService(env.activities, Paging{DefaultLimit: 2, MaxLimit: 10})

	a := env.member(t, "asha", models.GenderFemale)
	b := env.member(t, "bharat", models.GenderMale)

	var ids []uint
	for _, msg := range []string{"first", "second", "third"} {
		activity := &models.Activity{UserID: a.User.ID, ActorUserID: b.User.ID, ActivityType: models.ActivityInterestSent, Message: msg}
		require.NoError(t, env.activities.Create(ctx, activity))
		ids = append(ids, activity.ID)
	}

	page, err := svc.List(ctx, a.User.ID, false, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Limit)
	assert.EqualValues(t, 3, page.Total)
	assert.EqualValues(t, 3, page.Unread)
	require.Len(t, page.Notifications, 2)
	assert.Equal(t, ids[2], page.Notifications[0].ID, "newest first")

	require.NoError(t, svc.MarkRead(ctx, a.User.ID, ids[0]))
	err = svc.MarkRead(ctx, b.User.ID, ids[1])
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "someone else's notification: got %v", err)

	unread, err := svc.UnreadCount(ctx, a.User.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	page, err = svc.List(ctx, a.User.ID, true, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	n, err := svc.MarkAllRead(ctx, a.User.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, svc.Delete(ctx, a.User.ID, ids[0]))
	err = svc.Delete(ctx, a.User.ID, ids[0])
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)

	cleared, err := svc.Clear(ctx, a.User.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cleared)

	page, err = svc.List(ctx, a.User.ID, false, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Notifications)
	assert.NotNil(t, page.Notifications)
}
