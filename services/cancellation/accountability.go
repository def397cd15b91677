package cancellation

import (
	"context"

	hostRepo "staynest/database/repository/host"
	sagaRepo "staynest/database/repository/saga"
	"staynest/models"
)

const (
	// penaltyRankingScore is the ceiling imposed on a host's ranking score
	// from the second strike onward. Scores only ever go down here.
	penaltyRankingScore = 0.5
	// suspensionStrikeCount is the strike at which the account is suspended.
	suspensionStrikeCount = 3
)

// AccountabilityLedger tracks host cancellation strikes and the escalating
// penalties they carry.
type AccountabilityLedger interface {
	// ApplyHostCancellationStrike records one strike against the host,
	// idempotent per booking: a retried call for the same booking returns the
	// current state without double-incrementing.
	ApplyHostCancellationStrike(ctx context.Context, hostID, bookingID string) (*models.StrikeResult, error)
}

// DefaultAccountabilityLedger is the production implementation.
type DefaultAccountabilityLedger struct {
	HostRepo hostRepo.HostRepository
	SagaRepo sagaRepo.SagaRepository
}

func (l *DefaultAccountabilityLedger) ApplyHostCancellationStrike(ctx context.Context, hostID, bookingID string) (*models.StrikeResult, error) {
	host, err := l.HostRepo.GetByID(ctx, hostID)
	if err != nil {
		return nil, NewPersistenceError("failed to load host %s: %v", hostID, err)
	}
	if host == nil {
		return nil, NewNotFoundError("host %s not found", hostID)
	}

	saga, err := l.SagaRepo.Get(ctx, bookingID)
	if err != nil {
		return nil, NewPersistenceError("failed to load cancellation log for booking %s: %v", bookingID, err)
	}
	if saga != nil && saga.Done(models.StepStrikeApplied) {
		return &models.StrikeResult{
			HostID:        hostID,
			StrikeCount:   host.CancellationStrikes,
			RankingScore:  host.RankingScore,
			AccountStatus: host.AccountStatus,
			Counted:       false,
		}, nil
	}

	strikes := host.CancellationStrikes + 1
	ranking := host.RankingScore
	status := host.AccountStatus
	if strikes >= 2 && ranking > penaltyRankingScore {
		ranking = penaltyRankingScore
	}
	if strikes >= suspensionStrikeCount {
		status = models.AccountSuspended
	}

	if err := l.HostRepo.SetAccountability(ctx, hostID, strikes, ranking, status); err != nil {
		return nil, NewPersistenceError("failed to persist strike for host %s: %v", hostID, err)
	}
	if err := l.SagaRepo.MarkStep(ctx, bookingID, models.StepStrikeApplied); err != nil {
		return nil, NewPersistenceError("failed to record strike step for booking %s: %v", bookingID, err)
	}

	return &models.StrikeResult{
		HostID:        hostID,
		StrikeCount:   strikes,
		RankingScore:  ranking,
		AccountStatus: status,
		Counted:       true,
	}, nil
}
