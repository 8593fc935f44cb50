package service

import (
	"context"
	"encoding/json"

	"github.com/krakosik/reputation/internal/client"
	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/model"
	"github.com/sirupsen/logrus"
)

const VoteRecordedRoutingKey = "vote.recorded"

// VotePublisher emits integration events for persisted votes. Publishing is
// best effort and never fails the submission that triggered it.
type VotePublisher interface {
	PublishVote(ctx context.Context, vote model.Vote)
	Close() error
}

func newVotePublisher(rabbitClient client.RabbitClient) VotePublisher {
	if rabbitClient == nil {
		return newLogVotePublisher()
	}
	return &rabbitVotePublisher{rabbitClient: rabbitClient}
}

func newVoteRecordedEvent(vote model.Vote) dto.VoteRecordedEvent {
	return dto.VoteRecordedEvent{
		VoteID:      vote.ID,
		FromActorID: vote.FromActorID,
		ToActorID:   vote.ToActorID,
		Polarity:    vote.Polarity,
		CreatedAt:   vote.CreatedAt,
	}
}

type rabbitVotePublisher struct {
	rabbitClient client.RabbitClient
}

func (p *rabbitVotePublisher) PublishVote(ctx context.Context, vote model.Vote) {
	eventJson, err := json.Marshal(newVoteRecordedEvent(vote))
	if err != nil {
		logrus.Errorf("Error marshaling vote %d: %v", vote.ID, err)
		return
	}

	if err := p.rabbitClient.PublishMessage(ctx, VoteRecordedRoutingKey, eventJson); err != nil {
		logrus.Errorf("Error publishing vote %d: %v", vote.ID, err)
	}
}

// Close leaves the connection alone, it belongs to client.Clients.
func (p *rabbitVotePublisher) Close() error {
	return nil
}

// logVotePublisher stands in for RabbitMQ when it is not configured. Events
// are written to the log so the vote.recorded feed stays observable.
type logVotePublisher struct{}

func newLogVotePublisher() *logVotePublisher {
	logrus.Warn("Using log vote publisher (RabbitMQ not available)")
	return &logVotePublisher{}
}

func (p *logVotePublisher) PublishVote(_ context.Context, vote model.Vote) {
	event := newVoteRecordedEvent(vote)
	logrus.WithFields(logrus.Fields{
		"routing_key":   VoteRecordedRoutingKey,
		"vote_id":       event.VoteID,
		"from_actor_id": event.FromActorID,
		"to_actor_id":   event.ToActorID,
		"polarity":      event.Polarity,
		"created_at":    event.CreatedAt,
	}).Debug("Vote event")
}

func (p *logVotePublisher) Close() error {
	return nil
}
