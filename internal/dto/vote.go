package dto

import (
	"time"

	"github.com/krakosik/reputation/internal/model"
)

type RejectReason string

const (
	ReasonSelfVote        RejectReason = "self-vote"
	ReasonMissingEvidence RejectReason = "missing evidence"
	ReasonDailyLimit      RejectReason = "daily limit exceeded"
	ReasonTargetNotFound  RejectReason = "target not found"
	ReasonInvalidPolarity RejectReason = "invalid polarity"
)

type SubmitVoteRequest struct {
	FromActorID int64
	ToActorID   int64
	Polarity    model.Polarity
	Comment     string
	EvidenceRef string
}

// SubmitResult carries a business outcome. Storage failures are returned as errors instead.
type SubmitResult struct {
	Accepted bool
	Reason   RejectReason
	Vote     *model.Vote
}

func Accepted(vote model.Vote) SubmitResult {
	return SubmitResult{Accepted: true, Vote: &vote}
}

func Rejected(reason RejectReason) SubmitResult {
	return SubmitResult{Reason: reason}
}

type Stats struct {
	Total           int64 `json:"total"`
	Positive        int64 `json:"positive"`
	Negative        int64 `json:"negative"`
	PositivePercent int   `json:"positive_percent"`
	NegativePercent int   `json:"negative_percent"`
}

// Position locates a vote inside the filtered list of votes its target received.
type Position struct {
	Vote  model.Vote
	Index int
	Total int
}

func (p Position) HasPrev() bool {
	return p.Index > 0
}

func (p Position) HasNext() bool {
	return p.Index+1 < p.Total
}

type Page struct {
	Votes []model.Vote
	Total int
}

// VoteRecordedEvent is published after a vote is persisted.
type VoteRecordedEvent struct {
	VoteID      uint           `json:"vote_id"`
	FromActorID int64          `json:"from_actor_id"`
	ToActorID   int64          `json:"to_actor_id"`
	Polarity    model.Polarity `json:"polarity"`
	CreatedAt   time.Time      `json:"created_at"`
}
