package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActorRepository interface {
	Upsert(ctx context.Context, actor model.Actor) (model.Actor, error)
	GetByID(ctx context.Context, id int64) (model.Actor, error)
	FindByHandleFragment(ctx context.Context, fragment string) (model.Actor, error)
}

type actor struct {
	db *gorm.DB
}

func newActorRepository(db *gorm.DB) ActorRepository {
	return &actor{
		db: db,
	}
}

// Upsert inserts the actor or refreshes the profile fields that are set. RegisteredAt is kept from the first insert.
func (a *actor) Upsert(ctx context.Context, actor model.Actor) (model.Actor, error) {
	result := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"handle":     gorm.Expr("COALESCE(excluded.handle, actors.handle)"),
			"first_name": gorm.Expr("COALESCE(excluded.first_name, actors.first_name)"),
			"last_name":  gorm.Expr("COALESCE(excluded.last_name, actors.last_name)"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&actor)
	if result.Error != nil {
		return model.Actor{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return a.GetByID(ctx, actor.ID)
}

func (a *actor) GetByID(ctx context.Context, id int64) (model.Actor, error) {
	var actor model.Actor
	result := a.db.WithContext(ctx).First(&actor, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.Actor{}, dto.ErrNotFound
		}
		return model.Actor{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return actor, nil
}

// FindByHandleFragment returns the actor whose handle contains fragment, case-insensitively.
// Ties go to the shortest handle, then the lexicographically smallest, then the lowest ID.
func (a *actor) FindByHandleFragment(ctx context.Context, fragment string) (model.Actor, error) {
	pattern := "%" + escapeLike(strings.ToLower(fragment)) + "%"

	var actor model.Actor
	result := a.db.WithContext(ctx).
		Where(`LOWER(handle) LIKE ? ESCAPE '\'`, pattern).
		Order("LENGTH(handle) ASC").
		Order("handle ASC").
		Order("id ASC").
		Take(&actor)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.Actor{}, dto.ErrNotFound
		}
		return model.Actor{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return actor, nil
}
