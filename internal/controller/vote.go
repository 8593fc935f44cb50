package controller

import (
	"errors"
	"net/http"
	"strings"

	ctx "github.com/krakosik/reputation/internal/context"
	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/model"
	"github.com/krakosik/reputation/internal/service"
	"github.com/labstack/echo/v4"
)

type VoteController interface {
	Submit(c echo.Context) error
	Get(c echo.Context) error
	Position(c echo.Context) error
	Navigate(c echo.Context) error
}

type voteController struct {
	ledgerService   service.LedgerService
	identityService service.IdentityService
	searchService   service.SearchService
	queryService    service.QueryService
}

// submitVoteRequest names the target either by ID or by a search query.
type submitVoteRequest struct {
	ToActorID   int64  `json:"to_actor_id"`
	Target      string `json:"target"`
	Polarity    string `json:"polarity"`
	Comment     string `json:"comment"`
	EvidenceRef string `json:"evidence_ref"`
}

func newVoteController(
	ledgerService service.LedgerService,
	identityService service.IdentityService,
	searchService service.SearchService,
	queryService service.QueryService,
) VoteController {
	return &voteController{
		ledgerService:   ledgerService,
		identityService: identityService,
		searchService:   searchService,
		queryService:    queryService,
	}
}

func (v *voteController) Submit(c echo.Context) error {
	requestCtx := c.Request().Context()
	actorID, ok := ctx.GetActorFromContext(requestCtx)
	if !ok {
		return respondError(c, dto.ErrNotAuthorized)
	}

	var request submitVoteRequest
	if err := c.Bind(&request); err != nil {
		return respondError(c, invalid("malformed body"))
	}

	targetID := request.ToActorID
	if targetID == 0 {
		if strings.TrimSpace(request.Target) == "" {
			return respondError(c, invalid("to_actor_id or target is required"))
		}
		target, err := v.searchService.Resolve(requestCtx, request.Target)
		if err != nil {
			if errors.Is(err, dto.ErrNotFound) {
				return respondRejected(c, dto.ReasonTargetNotFound)
			}
			return respondError(c, err)
		}
		targetID = target.ID
	}

	// the voter is recorded on first contact
	voter, err := v.identityService.Upsert(requestCtx, actorID, "", "", "")
	if err != nil {
		return respondError(c, err)
	}

	polarity, ok := model.ParsePolarity(request.Polarity)
	if !ok {
		polarity = model.Polarity(request.Polarity)
	}

	result, err := v.ledgerService.Submit(requestCtx, dto.SubmitVoteRequest{
		FromActorID: actorID,
		ToActorID:   targetID,
		Polarity:    polarity,
		Comment:     request.Comment,
		EvidenceRef: request.EvidenceRef,
	})
	if err != nil {
		return respondError(c, err)
	}
	if !result.Accepted {
		return respondRejected(c, result.Reason)
	}

	vote := *result.Vote
	vote.Voter = voter
	return c.JSON(http.StatusCreated, dto.NewVoteResponse(vote))
}

func (v *voteController) Get(c echo.Context) error {
	voteID, err := voteIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	vote, err := v.ledgerService.GetByID(c.Request().Context(), voteID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewVoteResponse(vote))
}

func (v *voteController) Position(c echo.Context) error {
	voteID, err := voteIDParam(c)
	if err != nil {
		return respondError(c, err)
	}
	filter, err := filterParam(c)
	if err != nil {
		return respondError(c, err)
	}

	position, err := v.queryService.Locate(c.Request().Context(), voteID, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewPositionResponse(position))
}

func (v *voteController) Navigate(c echo.Context) error {
	voteID, err := voteIDParam(c)
	if err != nil {
		return respondError(c, err)
	}
	filter, err := filterParam(c)
	if err != nil {
		return respondError(c, err)
	}
	direction, ok := model.ParseDirection(c.QueryParam("direction"))
	if !ok {
		return respondError(c, invalid("direction must be next or prev"))
	}

	position, err := v.queryService.Navigate(c.Request().Context(), voteID, direction, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewPositionResponse(position))
}
