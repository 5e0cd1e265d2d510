package stream

import (
	"encoding/json"

	"github.com/example/bidngo-client/internal/models"
)

// Event types pushed by the backend feed.
const (
	EventBidPlaced        = "bid_placed"
	EventBidUpdated       = "bid_updated"
	EventBidDeleted       = "bid_deleted"
	EventConnectionStatus = "connection_status"
)

// Event is one frame from the bid feed. When the frame fails to decode as
// JSON, Type is empty and Raw carries the payload unchanged; listeners must
// type-check defensively.
type Event struct {
	Type   string      `json:"type"`
	TripID int64       `json:"tripId"`
	BidID  int64       `json:"bidId,omitempty"`
	Bid    *models.Bid `json:"bid,omitempty"`
	Status string      `json:"status,omitempty"`

	Raw []byte `json:"-"`
}

// decodeEvent never fails: undecodable frames are forwarded raw.
func decodeEvent(payload []byte) Event {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil || ev.Type == "" {
		return Event{Raw: payload}
	}
	if ev.BidID == 0 && ev.Bid != nil {
		ev.BidID = ev.Bid.ID
	}
	return ev
}
