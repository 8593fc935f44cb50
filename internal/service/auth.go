package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/krakosik/reputation/internal/client"
	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/model"
	"github.com/krakosik/reputation/internal/repository"
)

const actorIDClaim = "actor_id"

type AuthService interface {
	// Enabled reports whether tokens are verified. When false the caller must trust an upstream identity.
	Enabled() bool
	ValidateToken(ctx context.Context, token string) (model.Actor, error)
}

type authService struct {
	actorRepository     repository.ActorRepository
	authClient          client.AuthClient
	tokenExpireVerifier client.TokenExpireVerifier
	now                 func() time.Time
}

func newAuthService(actorRepository repository.ActorRepository, authClient client.AuthClient, verifier client.TokenExpireVerifier, now func() time.Time) AuthService {
	return &authService{actorRepository: actorRepository, authClient: authClient, tokenExpireVerifier: verifier, now: now}
}

func (a *authService) Enabled() bool {
	return a.authClient != nil
}

// ValidateToken verifies the ID token and returns the acting actor, recording it on first contact.
func (a *authService) ValidateToken(ctx context.Context, token string) (model.Actor, error) {
	if a.authClient == nil {
		return model.Actor{}, fmt.Errorf("%w: token verification is not configured", dto.ErrNotAuthorized)
	}

	response, err := a.authClient.VerifyIDToken(ctx, token)
	if err != nil {
		if a.tokenExpireVerifier(err) {
			return model.Actor{}, fmt.Errorf("%w: token expired: %v", dto.ErrNotAuthorized, err)
		}
		return model.Actor{}, fmt.Errorf("%w: invalid token: %v", dto.ErrNotAuthorized, err)
	}

	actorID, err := claimActorID(response.Claims)
	if err != nil {
		return model.Actor{}, err
	}

	handle, _ := response.Claims["handle"].(string)
	return a.actorRepository.Upsert(ctx, model.Actor{
		ID:           actorID,
		Handle:       optional(normalizeHandle(handle)),
		RegisteredAt: a.now().UTC(),
	})
}

func claimActorID(claims map[string]interface{}) (int64, error) {
	raw, ok := claims[actorIDClaim]
	if !ok {
		return 0, fmt.Errorf("%w: %s claim not found", dto.ErrNotAuthorized, actorIDClaim)
	}

	var actorID int64
	switch value := raw.(type) {
	case float64:
		actorID = int64(value)
		if float64(actorID) != value {
			return 0, fmt.Errorf("%w: %s claim is not an integer", dto.ErrNotAuthorized, actorIDClaim)
		}
	case string:
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s claim is not an integer", dto.ErrNotAuthorized, actorIDClaim)
		}
		actorID = parsed
	default:
		return 0, fmt.Errorf("%w: %s claim has type %T", dto.ErrNotAuthorized, actorIDClaim, raw)
	}

	if actorID <= 0 {
		return 0, fmt.Errorf("%w: %s claim must be positive", dto.ErrNotAuthorized, actorIDClaim)
	}
	return actorID, nil
}
