package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	"github.com/sangkips/bartab-api/internal/domain/repository"
	"github.com/sangkips/bartab-api/pkg/apperror"
	"go.uber.org/zap"
)

// SettlementService closes tabs against split payments
type SettlementService struct {
	clientRepo repository.ClientRepository
	archive    repository.SessionArchive
	logger     *zap.Logger
	clock      Clock
}

// NewSettlementService creates a new settlement service
func NewSettlementService(clientRepo repository.ClientRepository, archive repository.SessionArchive, logger *zap.Logger, clock Clock) *SettlementService {
	return &SettlementService{
		clientRepo: clientRepo,
		archive:    archive,
		logger:     logger,
		clock:      clock,
	}
}

// SettleResult is the closed session and the client after settlement
type SettleResult struct {
	Session *entity.TabSession `json:"session"`
	Client  *entity.Client     `json:"client"`
}

// Settle allocates the client's open tab across the payments and records the visit.
// Nothing changes unless every step, including the archive write, succeeds.
func (s *SettlementService) Settle(ctx context.Context, clientID uuid.UUID, payments []entity.SplitPayment) (*SettleResult, error) {
	if err := ValidatePayments(payments); err != nil {
		return nil, err
	}

	var session *entity.TabSession
	client, err := s.clientRepo.Update(ctx, clientID, func(c *entity.Client) error {
		var err error
		session, err = Settle(c, payments, s.clock.now())
		if err != nil {
			return err
		}
		return s.archive.Save(ctx, session)
	})
	if err != nil {
		s.logger.Warn("settlement rejected", zap.String("client_id", clientID.String()), zap.Error(err))
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	s.logger.Info("tab settled",
		zap.String("client_id", clientID.String()),
		zap.String("session_id", session.ID.String()),
		zap.String("total", session.Total().StringFixed(2)),
		zap.Int("purchases", len(session.Purchases)),
		zap.Duration("duration", session.Duration),
	)

	return &SettleResult{Session: session, Client: client}, nil
}
