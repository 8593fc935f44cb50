package service

import (
	"context"
	"math"

	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/repository"
)

type StatsService interface {
	Compute(ctx context.Context, actorID int64) (dto.Stats, error)
}

type statsService struct {
	voteRepository repository.VoteRepository
	statsCache     StatsCache
}

func newStatsService(voteRepository repository.VoteRepository, statsCache StatsCache) StatsService {
	return &statsService{voteRepository: voteRepository, statsCache: statsCache}
}

func (s *statsService) Compute(ctx context.Context, actorID int64) (dto.Stats, error) {
	stats, generation, ok := s.statsCache.Get(ctx, actorID)
	if ok {
		return stats, nil
	}

	tally, err := s.voteRepository.Tally(ctx, actorID)
	if err != nil {
		return dto.Stats{}, err
	}

	stats = dto.Stats{
		Total:           tally.Total,
		Positive:        tally.Positive,
		Negative:        tally.Negative,
		PositivePercent: percent(tally.Positive, tally.Total),
		NegativePercent: percent(tally.Negative, tally.Total),
	}
	s.statsCache.Set(ctx, actorID, generation, stats)

	return stats, nil
}

// percent rounds each share on its own, so the two shares may not add up to 100.
func percent(part, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
