package dto

import (
	"fmt"
	"time"

	"github.com/krakosik/reputation/internal/model"
)

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type RejectedResponse struct {
	Status string       `json:"status"`
	Reason RejectReason `json:"reason"`
}

type ActorResponse struct {
	ActorID      int64     `json:"actor_id"`
	Handle       string    `json:"handle,omitempty"`
	DisplayName  string    `json:"display_name,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

type ProfileResponse struct {
	Actor ActorResponse `json:"actor"`
	Stats Stats         `json:"stats"`
}

type VoteResponse struct {
	VoteID      uint           `json:"vote_id"`
	FromActorID int64          `json:"from_actor_id"`
	FromHandle  string         `json:"from_handle,omitempty"`
	ToActorID   int64          `json:"to_actor_id"`
	Polarity    model.Polarity `json:"polarity"`
	Comment     string         `json:"comment"`
	EvidenceRef string         `json:"evidence_ref"`
	CreatedAt   time.Time      `json:"created_at"`
}

type VoteListResponse struct {
	Votes  []VoteResponse `json:"votes"`
	Total  int            `json:"total"`
	Filter model.Filter   `json:"filter"`
}

type PositionResponse struct {
	Vote    VoteResponse `json:"vote"`
	Index   int          `json:"index"`
	Total   int          `json:"total"`
	Label   string       `json:"label"`
	HasPrev bool         `json:"has_prev"`
	HasNext bool         `json:"has_next"`
}

func NewActorResponse(actor model.Actor) ActorResponse {
	return ActorResponse{
		ActorID:      actor.ID,
		Handle:       actor.HandleOrEmpty(),
		DisplayName:  actor.DisplayName(),
		RegisteredAt: actor.RegisteredAt,
	}
}

func NewVoteResponse(vote model.Vote) VoteResponse {
	return VoteResponse{
		VoteID:      vote.ID,
		FromActorID: vote.FromActorID,
		FromHandle:  vote.Voter.HandleOrEmpty(),
		ToActorID:   vote.ToActorID,
		Polarity:    vote.Polarity,
		Comment:     vote.Comment,
		EvidenceRef: vote.EvidenceRef,
		CreatedAt:   vote.CreatedAt,
	}
}

func NewPositionResponse(position Position) PositionResponse {
	return PositionResponse{
		Vote:    NewVoteResponse(position.Vote),
		Index:   position.Index,
		Total:   position.Total,
		Label:   fmt.Sprintf("%d/%d", position.Index+1, position.Total),
		HasPrev: position.HasPrev(),
		HasNext: position.HasNext(),
	}
}
