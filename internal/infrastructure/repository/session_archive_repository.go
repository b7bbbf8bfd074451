package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bartab-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sessionArchiveRepository struct {
	db *gorm.DB
}

// NewSessionArchiveRepository writes settled sessions and their purchases to postgres
func NewSessionArchiveRepository(db *gorm.DB) domainRepo.SessionArchive {
	return &sessionArchiveRepository{db: db}
}

func (r *sessionArchiveRepository) Save(ctx context.Context, session *entity.TabSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Purchases are written explicitly below
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(session).Error; err != nil {
			return err
		}
		if len(session.Purchases) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&session.Purchases).Error
	})
}

func (r *sessionArchiveRepository) DeleteSessions(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id IN ?", ids).Delete(&entity.Purchase{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&entity.TabSession{}).Error
	})
}

func (r *sessionArchiveRepository) DeleteClient(ctx context.Context, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", clientID).Delete(&entity.Purchase{}).Error; err != nil {
			return err
		}
		return tx.Where("client_id = ?", clientID).Delete(&entity.TabSession{}).Error
	})
}

func (r *sessionArchiveRepository) Reassign(ctx context.Context, fromClientID, toClientID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Purchase{}).
			Where("client_id = ?", fromClientID).
			Update("client_id", toClientID).Error; err != nil {
			return err
		}
		return tx.Model(&entity.TabSession{}).
			Where("client_id = ?", fromClientID).
			Update("client_id", toClientID).Error
	})
}

type nullSessionArchive struct{}

// NewNullSessionArchive returns an archive that discards everything, used when no database is configured
func NewNullSessionArchive() domainRepo.SessionArchive {
	return nullSessionArchive{}
}

func (nullSessionArchive) Save(context.Context, *entity.TabSession) error { return nil }
func (nullSessionArchive) DeleteSessions(context.Context, []uuid.UUID) error { return nil }
func (nullSessionArchive) DeleteClient(context.Context, uuid.UUID) error { return nil }
func (nullSessionArchive) Reassign(context.Context, uuid.UUID, uuid.UUID) error { return nil }
