package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/model"
	"github.com/krakosik/reputation/internal/repository"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type QueryService interface {
	List(ctx context.Context, actorID int64, filter model.Filter) ([]model.Vote, error)
	ListPage(ctx context.Context, actorID int64, filter model.Filter, limit, offset int) (dto.Page, error)
	Locate(ctx context.Context, voteID uint, filter model.Filter) (dto.Position, error)
	Navigate(ctx context.Context, voteID uint, direction model.Direction, filter model.Filter) (dto.Position, error)
}

type queryService struct {
	voteRepository repository.VoteRepository
}

func newQueryService(voteRepository repository.VoteRepository) QueryService {
	return &queryService{voteRepository: voteRepository}
}

// List returns every vote actorID received, newest first, ties by vote id descending.
func (q *queryService) List(ctx context.Context, actorID int64, filter model.Filter) ([]model.Vote, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return q.voteRepository.ListReceived(ctx, actorID, filter, -1, 0)
}

func (q *queryService) ListPage(ctx context.Context, actorID int64, filter model.Filter, limit, offset int) (dto.Page, error) {
	if err := validateFilter(filter); err != nil {
		return dto.Page{}, err
	}
	if limit < 0 || offset < 0 {
		return dto.Page{}, fmt.Errorf("%w: negative limit or offset", dto.ErrInvalidRequest)
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	total, err := q.voteRepository.CountReceived(ctx, actorID, filter)
	if err != nil {
		return dto.Page{}, err
	}
	votes, err := q.voteRepository.ListReceived(ctx, actorID, filter, limit, offset)
	if err != nil {
		return dto.Page{}, err
	}

	return dto.Page{Votes: votes, Total: int(total)}, nil
}

// Locate returns the position of voteID inside its target's filtered list.
func (q *queryService) Locate(ctx context.Context, voteID uint, filter model.Filter) (dto.Position, error) {
	if err := validateFilter(filter); err != nil {
		return dto.Position{}, err
	}

	vote, err := q.anchor(ctx, voteID, filter)
	if err != nil {
		return dto.Position{}, err
	}
	return q.position(ctx, vote, filter)
}

// Navigate moves one step from voteID. The step is resolved with a keyset seek on
// (created_at, id), so the result does not depend on positional offsets.
func (q *queryService) Navigate(ctx context.Context, voteID uint, direction model.Direction, filter model.Filter) (dto.Position, error) {
	if err := validateFilter(filter); err != nil {
		return dto.Position{}, err
	}
	if direction != model.DirectionNext && direction != model.DirectionPrev {
		return dto.Position{}, fmt.Errorf("%w: direction must be -1 or +1", dto.ErrInvalidRequest)
	}

	current, err := q.anchor(ctx, voteID, filter)
	if err != nil {
		return dto.Position{}, err
	}

	neighbour, err := q.voteRepository.Neighbour(ctx, current, direction, filter)
	if err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			return dto.Position{}, dto.ErrOutOfRange
		}
		return dto.Position{}, err
	}

	return q.position(ctx, neighbour, filter)
}

func (q *queryService) anchor(ctx context.Context, voteID uint, filter model.Filter) (model.Vote, error) {
	vote, err := q.voteRepository.GetByID(ctx, voteID)
	if err != nil {
		return model.Vote{}, err
	}
	if !filter.Includes(vote) {
		return model.Vote{}, fmt.Errorf("%w: vote %d is not in the %s list", dto.ErrNotFound, voteID, filter)
	}
	return vote, nil
}

func (q *queryService) position(ctx context.Context, vote model.Vote, filter model.Filter) (dto.Position, error) {
	index, err := q.voteRepository.CountNewer(ctx, vote, filter)
	if err != nil {
		return dto.Position{}, err
	}
	total, err := q.voteRepository.CountReceived(ctx, vote.ToActorID, filter)
	if err != nil {
		return dto.Position{}, err
	}

	return dto.Position{Vote: vote, Index: int(index), Total: int(total)}, nil
}

func validateFilter(filter model.Filter) error {
	switch filter {
	case model.FilterAll, model.FilterPositive, model.FilterNegative:
		return nil
	default:
		return fmt.Errorf("%w: unknown filter %q", dto.ErrInvalidRequest, filter)
	}
}
