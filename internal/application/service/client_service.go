package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	"github.com/sangkips/bartab-api/internal/domain/enum"
	"github.com/sangkips/bartab-api/internal/domain/repository"
	"github.com/sangkips/bartab-api/pkg/apperror"
	"github.com/sangkips/bartab-api/pkg/pagination"
	"go.uber.org/zap"
)

// ClientService handles client lifecycle: creation, lookup, merge and removal
type ClientService struct {
	clientRepo repository.ClientRepository
	archive    repository.SessionArchive
	logger     *zap.Logger
	clock      Clock
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository, archive repository.SessionArchive, logger *zap.Logger, clock Clock) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		archive:    archive,
		logger:     logger,
		clock:      clock,
	}
}

// CreateClient opens a client record with an empty tab
func (s *ClientService) CreateClient(ctx context.Context, name string) (*entity.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "Name is required")
	}

	client := entity.NewClient(name, s.clock.now())
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info("client created", zap.String("client_id", client.ID.String()), zap.String("name", name))
	return client, nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// ListClientsInput represents the list clients input
type ListClientsInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     enum.ClientStatus
}

// ListClients lists clients in creation order
func (s *ClientService) ListClients(ctx context.Context, input *ListClientsInput) (*pagination.PaginatedResult[entity.Client], error) {
	params := input.Pagination
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	clients, total, err := s.clientRepo.List(ctx, &repository.ClientFilterParams{
		Pagination: params,
		Search:     input.Search,
		Status:     input.Status,
	})
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(clients, pag), nil
}

// RemoveClient deletes the client with its tab and history. Removing a missing client is a no-op.
func (s *ClientService) RemoveClient(ctx context.Context, id uuid.UUID) (bool, error) {
	removed, err := s.clientRepo.Delete(ctx, id, func(*entity.Client) error {
		return s.archive.DeleteClient(ctx, id)
	})
	if err != nil {
		return false, err
	}

	if removed {
		s.logger.Info("client removed", zap.String("client_id", id.String()))
	}
	return removed, nil
}

// RemoveSession deletes closed sessions from a client's history. ref is either a session id
// or an RFC3339 opened-at timestamp, in which case every session opened at that instant goes.
// A missing client or session is a no-op; the returned ids are the sessions actually removed.
func (s *ClientService) RemoveSession(ctx context.Context, clientID uuid.UUID, ref string) ([]uuid.UUID, error) {
	match, err := sessionMatcher(ref)
	if err != nil {
		return nil, err
	}

	var removed []uuid.UUID
	_, err = s.clientRepo.Update(ctx, clientID, func(c *entity.Client) error {
		removed = match(c)
		if len(removed) == 0 {
			return nil
		}
		c.UpdatedAt = s.clock.now()
		return s.archive.DeleteSessions(ctx, removed)
	})
	if err != nil {
		return nil, err
	}

	if len(removed) > 0 {
		s.logger.Info("sessions removed", zap.String("client_id", clientID.String()), zap.Int("count", len(removed)))
	}
	return removed, nil
}

func sessionMatcher(ref string) (func(*entity.Client) []uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return func(c *entity.Client) []uuid.UUID {
			if c.RemoveSession(id) {
				return []uuid.UUID{id}
			}
			return nil
		}, nil
	}

	if openedAt, err := time.Parse(time.RFC3339Nano, ref); err == nil {
		return func(c *entity.Client) []uuid.UUID {
			return c.RemoveSessionsOpenedAt(openedAt)
		}, nil
	}

	return nil, apperror.NewFieldError("session", "Must be a session id or an RFC3339 opened-at timestamp")
}

// MergeClients folds source into destination and deletes source
func (s *ClientService) MergeClients(ctx context.Context, sourceID, destinationID uuid.UUID) (*entity.Client, error) {
	if sourceID == destinationID {
		return nil, apperror.NewFieldError("destination_id", "Cannot merge a client into itself")
	}

	client, err := s.clientRepo.Merge(ctx, sourceID, destinationID, func(source, destination *entity.Client) error {
		destination.Absorb(source, s.clock.now())
		return s.archive.Reassign(ctx, sourceID, destinationID)
	})
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	s.logger.Info("clients merged",
		zap.String("source_id", sourceID.String()),
		zap.String("destination_id", destinationID.String()),
	)
	return client, nil
}
