package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteTally struct {
	Total    int64
	Positive int64
	Negative int64
}

type VoteRepository interface {
	CreateFirstOfDay(ctx context.Context, vote model.Vote) (model.Vote, error)
	GetByID(ctx context.Context, id uint) (model.Vote, error)
	CountForPairOnDay(ctx context.Context, fromActorID, toActorID int64, day string) (int64, error)
	ListReceived(ctx context.Context, toActorID int64, filter model.Filter, limit, offset int) ([]model.Vote, error)
	CountReceived(ctx context.Context, toActorID int64, filter model.Filter) (int64, error)
	CountNewer(ctx context.Context, anchor model.Vote, filter model.Filter) (int64, error)
	Neighbour(ctx context.Context, anchor model.Vote, direction model.Direction, filter model.Filter) (model.Vote, error)
	Tally(ctx context.Context, toActorID int64) (VoteTally, error)
}

type vote struct {
	db *gorm.DB
}

func newVoteRepository(db *gorm.DB) VoteRepository {
	return &vote{
		db: db,
	}
}

// CreateFirstOfDay inserts the vote unless the pair already voted on vote.VoteDay, in which case it
// returns dto.ErrAlreadyVoted. The unique index on (from, to, day) backs the check against concurrent writers.
func (v *vote) CreateFirstOfDay(ctx context.Context, vote model.Vote) (model.Vote, error) {
	err := v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		result := tx.Model(&model.Vote{}).
			Where("from_actor_id = ? AND to_actor_id = ? AND vote_day = ?", vote.FromActorID, vote.ToActorID, vote.VoteDay).
			Count(&count)
		if result.Error != nil {
			return result.Error
		}
		if count > 0 {
			return dto.ErrAlreadyVoted
		}

		return tx.Omit(clause.Associations).Create(&vote).Error
	})
	if err != nil {
		if errors.Is(err, dto.ErrAlreadyVoted) || isUniqueViolation(err) {
			return model.Vote{}, dto.ErrAlreadyVoted
		}
		return model.Vote{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
	}

	return vote, nil
}

func (v *vote) GetByID(ctx context.Context, id uint) (model.Vote, error) {
	var vote model.Vote
	result := v.db.WithContext(ctx).Preload("Voter").First(&vote, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.Vote{}, dto.ErrNotFound
		}
		return model.Vote{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return vote, nil
}

func (v *vote) CountForPairOnDay(ctx context.Context, fromActorID, toActorID int64, day string) (int64, error) {
	var count int64
	result := v.db.WithContext(ctx).Model(&model.Vote{}).
		Where("from_actor_id = ? AND to_actor_id = ? AND vote_day = ?", fromActorID, toActorID, day).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return count, nil
}

// ListReceived returns the votes toActorID received, newest first. A negative limit means no limit.
func (v *vote) ListReceived(ctx context.Context, toActorID int64, filter model.Filter, limit, offset int) ([]model.Vote, error) {
	var votes []model.Vote
	result := v.received(ctx, toActorID, filter).
		Preload("Voter").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&votes)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return votes, nil
}

func (v *vote) CountReceived(ctx context.Context, toActorID int64, filter model.Filter) (int64, error) {
	var count int64
	result := v.received(ctx, toActorID, filter).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return count, nil
}

// CountNewer counts the votes that sort before anchor in its target's list, i.e. anchor's zero-based index.
func (v *vote) CountNewer(ctx context.Context, anchor model.Vote, filter model.Filter) (int64, error) {
	var count int64
	result := v.received(ctx, anchor.ToActorID, filter).
		Where("(created_at > ? OR (created_at = ? AND id > ?))", anchor.CreatedAt, anchor.CreatedAt, anchor.ID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return count, nil
}

// Neighbour seeks the vote adjacent to anchor in its target's list. DirectionNext moves to older votes.
func (v *vote) Neighbour(ctx context.Context, anchor model.Vote, direction model.Direction, filter model.Filter) (model.Vote, error) {
	query := v.received(ctx, anchor.ToActorID, filter).Preload("Voter")
	if direction == model.DirectionNext {
		query = query.
			Where("(created_at < ? OR (created_at = ? AND id < ?))", anchor.CreatedAt, anchor.CreatedAt, anchor.ID).
			Order("created_at DESC").
			Order("id DESC")
	} else {
		query = query.
			Where("(created_at > ? OR (created_at = ? AND id > ?))", anchor.CreatedAt, anchor.CreatedAt, anchor.ID).
			Order("created_at ASC").
			Order("id ASC")
	}

	var vote model.Vote
	result := query.Take(&vote)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.Vote{}, dto.ErrNotFound
		}
		return model.Vote{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return vote, nil
}

func (v *vote) Tally(ctx context.Context, toActorID int64) (VoteTally, error) {
	var tally VoteTally
	result := v.db.WithContext(ctx).Model(&model.Vote{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN polarity = ? THEN 1 ELSE 0 END), 0) AS positive, "+
				"COALESCE(SUM(CASE WHEN polarity = ? THEN 1 ELSE 0 END), 0) AS negative",
			model.PolarityPositive, model.PolarityNegative,
		).
		Where("to_actor_id = ?", toActorID).
		Scan(&tally)
	if result.Error != nil {
		return VoteTally{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return tally, nil
}

func (v *vote) received(ctx context.Context, toActorID int64, filter model.Filter) *gorm.DB {
	query := v.db.WithContext(ctx).Model(&model.Vote{}).Where("to_actor_id = ?", toActorID)
	if polarity, ok := filter.Polarity(); ok {
		query = query.Where("polarity = ?", polarity)
	}
	return query
}
