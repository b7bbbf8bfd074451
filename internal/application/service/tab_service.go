package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	"github.com/sangkips/bartab-api/internal/domain/repository"
	"github.com/sangkips/bartab-api/pkg/apperror"
	"go.uber.org/zap"
)

// TabService adds and removes items on open tabs
type TabService struct {
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	logger      *zap.Logger
	clock       Clock
}

// NewTabService creates a new tab service
func NewTabService(clientRepo repository.ClientRepository, productRepo repository.ProductRepository, logger *zap.Logger, clock Clock) *TabService {
	return &TabService{
		clientRepo:  clientRepo,
		productRepo: productRepo,
		logger:      logger,
		clock:       clock,
	}
}

// AddItemResult is the tab after an item was added and the line it landed on
type AddItemResult struct {
	Client *entity.Client   `json:"client"`
	Item   *entity.LineItem `json:"item"`
}

// AddItem puts one unit of a catalog product on the client's tab
func (s *TabService) AddItem(ctx context.Context, clientID, productID uuid.UUID) (*AddItemResult, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	now := s.clock.now()
	var line entity.LineItem
	opened := false
	client, err := s.clientRepo.Update(ctx, clientID, func(c *entity.Client) error {
		// read again under the client lock so a concurrent catalog edit is not lost
		current, err := s.productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if current != nil {
			product = current
		}
		opened = !c.HasOpenTab()
		line = c.AddItem(*product, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	if opened {
		s.logger.Info("tab opened", zap.String("client_id", clientID.String()), zap.Time("opened_at", now))
	}
	s.logger.Debug("item added",
		zap.String("client_id", clientID.String()),
		zap.String("product", product.Name),
		zap.Int("quantity", line.Quantity),
	)

	return &AddItemResult{Client: client, Item: &line}, nil
}

// RemoveItem takes one unit of a line off the tab. A missing client or line is a no-op;
// the returned client is nil only when the client does not exist.
func (s *TabService) RemoveItem(ctx context.Context, clientID, itemID uuid.UUID) (*entity.Client, error) {
	removed := false
	client, err := s.clientRepo.Update(ctx, clientID, func(c *entity.Client) error {
		removed = c.RemoveItem(itemID, s.clock.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	if removed {
		s.logger.Debug("item removed", zap.String("client_id", clientID.String()), zap.String("item_id", itemID.String()))
	}
	return client, nil
}
