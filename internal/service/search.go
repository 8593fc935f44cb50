package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/model"
	"github.com/krakosik/reputation/internal/repository"
)

type SearchService interface {
	Resolve(ctx context.Context, query string) (model.Actor, error)
}

type searchService struct {
	actorRepository repository.ActorRepository
}

func newSearchService(actorRepository repository.ActorRepository) SearchService {
	return &searchService{actorRepository: actorRepository}
}

// Resolve tries an exact actor ID first when query is all digits, then a
// handle substring match with any leading @ removed.
func (s *searchService) Resolve(ctx context.Context, query string) (model.Actor, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.Actor{}, fmt.Errorf("%w: empty search query", dto.ErrInvalidRequest)
	}

	if isDigits(query) {
		if actorID, err := strconv.ParseInt(query, 10, 64); err == nil {
			actor, err := s.actorRepository.GetByID(ctx, actorID)
			if err == nil {
				return actor, nil
			}
			if !errors.Is(err, dto.ErrNotFound) {
				return model.Actor{}, err
			}
		}
	}

	fragment := strings.TrimLeft(query, "@")
	if fragment == "" {
		return model.Actor{}, dto.ErrNotFound
	}
	return s.actorRepository.FindByHandleFragment(ctx, fragment)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
