package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/model"
	"github.com/krakosik/reputation/internal/repository"
)

type IdentityService interface {
	// Upsert records the actor on first sighting and refreshes the non-empty profile fields afterwards.
	Upsert(ctx context.Context, actorID int64, handle, firstName, lastName string) (model.Actor, error)
	Get(ctx context.Context, actorID int64) (model.Actor, error)
}

type identityService struct {
	actorRepository repository.ActorRepository
	now             func() time.Time
}

func newIdentityService(actorRepository repository.ActorRepository, now func() time.Time) IdentityService {
	return &identityService{actorRepository: actorRepository, now: now}
}

func (i *identityService) Upsert(ctx context.Context, actorID int64, handle, firstName, lastName string) (model.Actor, error) {
	if actorID <= 0 {
		return model.Actor{}, fmt.Errorf("%w: actor id must be positive", dto.ErrInvalidRequest)
	}

	return i.actorRepository.Upsert(ctx, model.Actor{
		ID:           actorID,
		Handle:       optional(normalizeHandle(handle)),
		FirstName:    optional(firstName),
		LastName:     optional(lastName),
		RegisteredAt: i.now().UTC(),
	})
}

func (i *identityService) Get(ctx context.Context, actorID int64) (model.Actor, error) {
	return i.actorRepository.GetByID(ctx, actorID)
}

func normalizeHandle(handle string) string {
	return strings.TrimLeft(strings.TrimSpace(handle), "@")
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
