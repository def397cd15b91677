package notification

import (
	"context"
	"errors"
	"testing"

	"staynest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserRepo struct {
	users map[string]*models.User
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) SetAccountability(ctx context.Context, hostID string, strikes int, ranking float64, status models.AccountStatus) error {
	return nil
}

func TestSendPushNotificationNoToken(t *testing.T) {
	svc := &DefaultNotificationService{
		Users:  &fakeUserRepo{users: map[string]*models.User{"u-1": {ID: "u-1"}}},
		Logger: zap.NewNop(),
	}

	err := svc.SendPushNotification(context.Background(), "u-1", "title", "body", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFCMToken))
}

func TestDispatchCancellationNoticeSkipsGuestWithoutToken(t *testing.T) {
	svc := &DefaultNotificationService{
		Users:  &fakeUserRepo{users: map[string]*models.User{"guest-1": {ID: "guest-1"}}},
		Logger: zap.NewNop(),
	}

	// A tokenless guest must not fail the task: retrying cannot deliver it.
	err := svc.DispatchCancellationNotice(context.Background(), models.CancellationNotice{
		BookingID: "b-1",
		GuestID:   "guest-1",
		Actor:     models.ActorGuest,
	})
	assert.NoError(t, err)
}

func TestDispatchCancellationNoticeSkipsUnknownGuest(t *testing.T) {
	svc := &DefaultNotificationService{
		Users:  &fakeUserRepo{users: map[string]*models.User{}},
		Logger: zap.NewNop(),
	}

	err := svc.DispatchCancellationNotice(context.Background(), models.CancellationNotice{
		BookingID: "b-1",
		GuestID:   "gone",
		Actor:     models.ActorGuest,
	})
	assert.NoError(t, err)
}
