package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	"github.com/sangkips/bartab-api/internal/domain/enum"
	"github.com/sangkips/bartab-api/pkg/pagination"
)

// ClientMutation changes a client copy. Returning an error discards the copy.
type ClientMutation func(client *entity.Client) error

// ClientRepository owns every client and serialises mutations per client.
// Reads return copies; mutations are all-or-nothing.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	// GetByID returns nil, nil when the client does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	List(ctx context.Context, params *ClientFilterParams) ([]entity.Client, int64, error)
	// All returns every client in creation order
	All(ctx context.Context) ([]entity.Client, error)
	// Update applies fn to a copy of the client under the client's lock and stores
	// the copy only if fn succeeds. Returns nil, nil when the client does not exist.
	Update(ctx context.Context, id uuid.UUID, fn ClientMutation) (*entity.Client, error)
	// Merge locks both clients, applies fn to copies, stores the destination and
	// deletes the source. Returns nil, nil when either client does not exist.
	Merge(ctx context.Context, sourceID, destinationID uuid.UUID, fn func(source, destination *entity.Client) error) (*entity.Client, error)
	// Delete removes the client; deleting a missing client is not an error.
	// fn, when non-nil, runs under the client's lock before removal and can veto it.
	Delete(ctx context.Context, id uuid.UUID, fn ClientMutation) (bool, error)
}

// ClientFilterParams contains filtering parameters for client queries
type ClientFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     enum.ClientStatus
}
