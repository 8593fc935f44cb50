package controller

import (
	"net/http"

	ctx "github.com/krakosik/reputation/internal/context"
	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/model"
	"github.com/krakosik/reputation/internal/service"
	"github.com/labstack/echo/v4"
)

type ActorController interface {
	Upsert(c echo.Context) error
	Profile(c echo.Context) error
	Search(c echo.Context) error
	ListVotes(c echo.Context) error
}

type actorController struct {
	identityService service.IdentityService
	statsService    service.StatsService
	searchService   service.SearchService
	queryService    service.QueryService
}

type upsertActorRequest struct {
	Handle    string `json:"handle"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func newActorController(
	identityService service.IdentityService,
	statsService service.StatsService,
	searchService service.SearchService,
	queryService service.QueryService,
) ActorController {
	return &actorController{
		identityService: identityService,
		statsService:    statsService,
		searchService:   searchService,
		queryService:    queryService,
	}
}

// Upsert lets an actor record or refresh its own profile.
func (a *actorController) Upsert(c echo.Context) error {
	actorID, err := actorIDParam(c)
	if err != nil {
		return respondError(c, err)
	}
	if acting, ok := ctx.GetActorFromContext(c.Request().Context()); !ok || acting != actorID {
		return c.JSON(http.StatusForbidden, dto.ErrorResponse{Status: "error", Message: "actors may only update themselves"})
	}

	var request upsertActorRequest
	if err := c.Bind(&request); err != nil {
		return respondError(c, invalid("malformed body"))
	}

	actor, err := a.identityService.Upsert(c.Request().Context(), actorID, request.Handle, request.FirstName, request.LastName)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewActorResponse(actor))
}

func (a *actorController) Profile(c echo.Context) error {
	actorID, err := actorIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	actor, err := a.identityService.Get(c.Request().Context(), actorID)
	if err != nil {
		return respondError(c, err)
	}
	return a.profile(c, actor)
}

func (a *actorController) Search(c echo.Context) error {
	actor, err := a.searchService.Resolve(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return respondError(c, err)
	}
	return a.profile(c, actor)
}

func (a *actorController) ListVotes(c echo.Context) error {
	actorID, err := actorIDParam(c)
	if err != nil {
		return respondError(c, err)
	}
	filter, err := filterParam(c)
	if err != nil {
		return respondError(c, err)
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		return respondError(c, err)
	}
	offset, err := intParam(c, "offset")
	if err != nil {
		return respondError(c, err)
	}

	page, err := a.queryService.ListPage(c.Request().Context(), actorID, filter, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	votes := make([]dto.VoteResponse, 0, len(page.Votes))
	for _, vote := range page.Votes {
		votes = append(votes, dto.NewVoteResponse(vote))
	}
	return c.JSON(http.StatusOK, dto.VoteListResponse{Votes: votes, Total: page.Total, Filter: filter})
}

func (a *actorController) profile(c echo.Context, actor model.Actor) error {
	stats, err := a.statsService.Compute(c.Request().Context(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ProfileResponse{Actor: dto.NewActorResponse(actor), Stats: stats})
}
