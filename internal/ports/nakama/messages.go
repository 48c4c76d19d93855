package nakama

import "pili/internal/app"

// Client request payloads, all JSON.

type SetReadyRequest struct {
	Ready bool `json:"ready"`
}

type PlaceBetRequest struct {
	Bet int `json:"bet"`
}

type PlayCardRequest struct {
	CardID int `json:"card_id"`
	// JokerValue is required when the card is the joker, in [0, max+1].
	JokerValue *int `json:"joker_value,omitempty"`
}

type PassCardsRequest struct {
	CardIDs []int `json:"card_ids"`
}

type DesignationRequest struct {
	TargetID string `json:"target_id"`
}

type ExchangeRequest struct {
	CardID   int    `json:"card_id"`
	TargetID string `json:"target_id"`
}

type AddBotRequest struct {
	Difficulty string `json:"difficulty,omitempty"`
}

// EventEnvelope wraps one engine event for the wire. Kind selects the
// payload shape on the client.
type EventEnvelope struct {
	Kind    app.EventKind `json:"kind"`
	Payload any           `json:"payload,omitempty"`
}

// ErrorMessage is sent privately to the player whose request was rejected.
type ErrorMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MatchLabel is the queryable JSON label kept up to date on the match.
type MatchLabel struct {
	Game  string `json:"game"`
	Phase string `json:"phase"`
	Open  int    `json:"open"`
}
