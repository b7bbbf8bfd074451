package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bartab-api/internal/domain/repository"
	"github.com/sangkips/bartab-api/pkg/apperror"
	"github.com/sangkips/bartab-api/pkg/pagination"
)

// clientRecord guards one client. Lock order is record before store.
type clientRecord struct {
	mu      sync.Mutex
	client  *entity.Client
	deleted bool
	seq     int64
}

type clientRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*clientRecord
	nextSeq int64
}

// NewClientRepository creates the in-memory client store
func NewClientRepository() domainRepo.ClientRepository {
	return &clientRepository{records: make(map[uuid.UUID]*clientRecord)}
}

func (r *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[client.ID]; exists {
		return apperror.NewConflictError("Client already exists")
	}
	r.nextSeq++
	r.records[client.ID] = &clientRecord{client: client.Clone(), seq: r.nextSeq}
	return nil
}

func (r *clientRepository) record(id uuid.UUID) *clientRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records[id]
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	rec := r.record(id)
	if rec == nil {
		return nil, nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, nil
	}
	return rec.client.Clone(), nil
}

// snapshot returns copies of every live client in creation order
func (r *clientRepository) snapshot() []entity.Client {
	r.mu.RLock()
	recs := make([]*clientRecord, 0, len(r.records))
	for _, rec := range r.records {
		recs = append(recs, rec)
	}
	r.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	clients := make([]entity.Client, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		if !rec.deleted {
			clients = append(clients, *rec.client.Clone())
		}
		rec.mu.Unlock()
	}
	return clients
}

func (r *clientRepository) All(ctx context.Context) ([]entity.Client, error) {
	return r.snapshot(), nil
}

func (r *clientRepository) List(ctx context.Context, params *domainRepo.ClientFilterParams) ([]entity.Client, int64, error) {
	search := strings.ToLower(strings.TrimSpace(params.Search))

	var filtered []entity.Client
	for _, c := range r.snapshot() {
		if !params.Status.Matches(c.IsArchived) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) {
			continue
		}
		filtered = append(filtered, c)
	}

	return pagination.Window(filtered, params.Pagination), int64(len(filtered)), nil
}

func (r *clientRepository) Update(ctx context.Context, id uuid.UUID, fn domainRepo.ClientMutation) (*entity.Client, error) {
	rec := r.record(id)
	if rec == nil {
		return nil, nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, nil
	}

	working := rec.client.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	rec.client = working
	return working.Clone(), nil
}

func (r *clientRepository) Merge(ctx context.Context, sourceID, destinationID uuid.UUID, fn func(source, destination *entity.Client) error) (*entity.Client, error) {
	if sourceID == destinationID {
		return nil, apperror.NewBadRequestError("Cannot merge a client into itself")
	}

	src, dst := r.record(sourceID), r.record(destinationID)
	if src == nil || dst == nil {
		return nil, nil
	}

	first, second := src, dst
	if destinationID.String() < sourceID.String() {
		first, second = dst, src
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if src.deleted || dst.deleted {
		return nil, nil
	}

	source, destination := src.client.Clone(), dst.client.Clone()
	if err := fn(source, destination); err != nil {
		return nil, err
	}

	dst.client = destination
	src.deleted = true
	r.mu.Lock()
	delete(r.records, sourceID)
	r.mu.Unlock()

	return destination.Clone(), nil
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID, fn domainRepo.ClientMutation) (bool, error) {
	rec := r.record(id)
	if rec == nil {
		return false, nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return false, nil
	}

	if fn != nil {
		if err := fn(rec.client.Clone()); err != nil {
			return false, err
		}
	}

	rec.deleted = true
	r.mu.Lock()
	delete(r.records, id)
	r.mu.Unlock()
	return true, nil
}
