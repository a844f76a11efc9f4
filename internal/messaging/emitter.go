// internal/messaging/emitter.go

package messaging

import (
	"context"
	"fmt"

	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/matching"
)

// EventEmitter pushes match lifecycle events onto users' personal
// channels. It satisfies the match engine's Notifier seam, keeping the
// dependency between the two packages one-directional.
type EventEmitter struct {
	hub  *Hub
	sink NotificationSink
}

func NewEventEmitter(hub *Hub, sink NotificationSink) *EventEmitter {
	return &EventEmitter{hub: hub, sink: sink}
}

// NotifyMutualMatch delivers a new_match event to both participants.
// Offline users miss the push; the match itself is already persisted and
// shows up on their next match list fetch.
func (e *EventEmitter) NotifyMutualMatch(ctx context.Context, match *matching.MatchRecord) {
	if match == nil {
		return
	}

	actionURL := fmt.Sprintf("/matches/%d", match.ID)
	for _, userID := range []int64{match.UserAID, match.UserBID} {
		payload := NewMatchPayload{
			MatchID:       match.ID,
			CounterpartID: match.Other(userID),
			Message:       "You have a new match",
			ActionURL:     actionURL,
		}
		e.hub.SendToUser(userID, NewEvent(EventNewMatch, payload))

		if e.sink != nil {
			go e.sink.Record(context.Background(), userID, EventNewMatch, payload)
		}
	}
}

// NotifyLike delivers a new_like event to the liked user only. The actor
// gets no event; their own action is its own acknowledgement.
func (e *EventEmitter) NotifyLike(ctx context.Context, actorID, targetID int64) {
	payload := NewLikePayload{
		CounterpartID: actorID,
		Message:       "Someone liked your profile",
	}
	e.hub.SendToUser(targetID, NewEvent(EventNewLike, payload))

	if e.sink != nil {
		go e.sink.Record(context.Background(), targetID, EventNewLike, payload)
	}
}
