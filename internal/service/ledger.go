package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/model"
	"github.com/krakosik/reputation/internal/repository"
	"github.com/sirupsen/logrus"
)

const maxCommentRunes = 1000

type LedgerService interface {
	Submit(ctx context.Context, request dto.SubmitVoteRequest) (dto.SubmitResult, error)
	GetByID(ctx context.Context, voteID uint) (model.Vote, error)
}

type ledgerService struct {
	actorRepository repository.ActorRepository
	voteRepository  repository.VoteRepository
	statsCache      StatsCache
	publisher       VotePublisher
	locker          *pairLocker
	location        *time.Location
	now             func() time.Time
}

func newLedgerService(
	actorRepository repository.ActorRepository,
	voteRepository repository.VoteRepository,
	statsCache StatsCache,
	publisher VotePublisher,
	location *time.Location,
	now func() time.Time,
) LedgerService {
	return &ledgerService{
		actorRepository: actorRepository,
		voteRepository:  voteRepository,
		statsCache:      statsCache,
		publisher:       publisher,
		locker:          newPairLocker(),
		location:        location,
		now:             now,
	}
}

// Submit admits a vote. Business rule failures come back as a rejected result;
// only storage failures and caller contract violations are errors.
func (l *ledgerService) Submit(ctx context.Context, request dto.SubmitVoteRequest) (dto.SubmitResult, error) {
	if request.FromActorID == request.ToActorID {
		return dto.Rejected(dto.ReasonSelfVote), nil
	}

	if _, err := l.actorRepository.GetByID(ctx, request.FromActorID); err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			return dto.SubmitResult{}, fmt.Errorf("%w: unknown voter %d", dto.ErrInvalidRequest, request.FromActorID)
		}
		return dto.SubmitResult{}, err
	}
	if _, err := l.actorRepository.GetByID(ctx, request.ToActorID); err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			return dto.Rejected(dto.ReasonTargetNotFound), nil
		}
		return dto.SubmitResult{}, err
	}

	if !request.Polarity.IsValid() {
		return dto.Rejected(dto.ReasonInvalidPolarity), nil
	}

	evidenceRef := strings.TrimSpace(request.EvidenceRef)
	if evidenceRef == "" {
		return dto.Rejected(dto.ReasonMissingEvidence), nil
	}

	unlock := l.locker.Lock(request.FromActorID, request.ToActorID)
	defer unlock()

	now := l.now().UTC().Truncate(time.Microsecond)
	vote, err := l.voteRepository.CreateFirstOfDay(ctx, model.Vote{
		FromActorID: request.FromActorID,
		ToActorID:   request.ToActorID,
		VoteDay:     model.CalendarDay(now, l.location),
		Polarity:    request.Polarity,
		Comment:     truncateRunes(strings.TrimSpace(request.Comment), maxCommentRunes),
		EvidenceRef: evidenceRef,
		CreatedAt:   now,
	})
	if err != nil {
		if errors.Is(err, dto.ErrAlreadyVoted) {
			return dto.Rejected(dto.ReasonDailyLimit), nil
		}
		return dto.SubmitResult{}, err
	}

	l.statsCache.Invalidate(ctx, vote.ToActorID)
	l.publisher.PublishVote(ctx, vote)

	logrus.WithFields(logrus.Fields{
		"vote_id":  vote.ID,
		"from":     vote.FromActorID,
		"to":       vote.ToActorID,
		"polarity": vote.Polarity,
	}).Info("Vote recorded")

	return dto.Accepted(vote), nil
}

func (l *ledgerService) GetByID(ctx context.Context, voteID uint) (model.Vote, error) {
	return l.voteRepository.GetByID(ctx, voteID)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
