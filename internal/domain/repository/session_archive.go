package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
)

// SessionArchive receives a copy of every settled tab session.
// The in-memory client store stays authoritative; the archive is a write-through collaborator.
type SessionArchive interface {
	Save(ctx context.Context, session *entity.TabSession) error
	DeleteSessions(ctx context.Context, ids []uuid.UUID) error
	DeleteClient(ctx context.Context, clientID uuid.UUID) error
	// Reassign moves archived sessions from one client to another after a merge
	Reassign(ctx context.Context, fromClientID, toClientID uuid.UUID) error
}
