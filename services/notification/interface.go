package notification

import (
	"context"
	"errors"
	"fmt"

	hostRepo "staynest/database/repository/host"
	"staynest/models"
	"staynest/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// ErrNoFCMToken marks a recipient that cannot be pushed to at all. Callers
// treat it as a skip: retrying cannot make a token appear.
var ErrNoFCMToken = errors.New("user has no FCM token")

// NotificationService delivers cancellation notices as FCM pushes. Delivery
// is best-effort: the cancellation itself never waits on it.
type NotificationService interface {
	SendPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
	DispatchCancellationNotice(ctx context.Context, notice models.CancellationNotice) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Users  hostRepo.HostRepository
	Logger *zap.Logger
}

// SendPushNotification looks up a user's FCM token and sends a push.
func (s *DefaultNotificationService) SendPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("SendPushNotification: could not load user %s: %w", userID, err)
	}
	if u == nil || u.FCMToken == "" {
		return fmt.Errorf("SendPushNotification: user %s: %w", userID, ErrNoFCMToken)
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendPushNotification: failed to send FCM message: %w", err)
	}
	return nil
}

// DispatchCancellationNotice notifies the guest and, for host-initiated
// cancellations, the host. A failed push is logged, not propagated: the
// notice task retries as a whole.
func (s *DefaultNotificationService) DispatchCancellationNotice(ctx context.Context, notice models.CancellationNotice) error {
	data := map[string]string{
		"type":       "booking_cancelled",
		"booking_id": notice.BookingID,
		"listing_id": notice.ListingID,
	}

	if err := s.SendPushNotification(ctx, notice.GuestID, "Booking cancelled", notice.Message, data); err != nil {
		if !errors.Is(err, ErrNoFCMToken) {
			return err
		}
		s.Logger.Warn("guest has no push token, skipping cancellation notice",
			zap.String("guest_id", notice.GuestID),
			zap.String("booking_id", notice.BookingID),
		)
	}

	if notice.Actor == models.ActorHost {
		hostBody := fmt.Sprintf(
			"You cancelled booking %s. The guest was fully refunded and a penalty was applied to your account.",
			notice.BookingID,
		)
		if err := s.SendPushNotification(ctx, notice.HostID, "Cancellation penalty applied", hostBody, data); err != nil {
			s.Logger.Warn("host cancellation push failed",
				zap.String("host_id", notice.HostID),
				zap.Error(err),
			)
		}
	}
	return nil
}
