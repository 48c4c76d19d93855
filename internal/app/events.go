package app

import (
	"time"

	"pili/internal/domain"
)

// EventKind identifies emitted engine events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined        EventKind = "player_joined"
	EventPlayerLeft          EventKind = "player_left"
	EventPlayerReady         EventKind = "player_ready"
	EventPhaseChanged        EventKind = "phase_changed"
	EventMissionRevealed     EventKind = "mission_revealed"
	EventHandDealt           EventKind = "hand_dealt"
	EventHandUpdated         EventKind = "hand_updated"
	EventPeekStarted         EventKind = "peek_started"
	EventPeekEnded           EventKind = "peek_ended"
	EventBetPlaced           EventKind = "bet_placed"
	EventTurnChanged         EventKind = "turn_changed"
	EventPassRequired        EventKind = "pass_required"
	EventDesignationRequired EventKind = "designation_required"
	EventExchangeRequired    EventKind = "exchange_required"
	EventHandsRevealed       EventKind = "hands_revealed"
	EventCardPlayed          EventKind = "card_played"
	EventTrickWon            EventKind = "trick_won"
	EventRoundScored         EventKind = "round_scored"
	EventRoundEnded          EventKind = "round_ended"
	EventGameOver            EventKind = "game_over"
)

// Event is an engine event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Seat     int    `json:"seat"`
	IsBot    bool   `json:"is_bot"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
}

type PlayerReadyPayload struct {
	PlayerID string `json:"player_id"`
	Ready    bool   `json:"ready"`
}

type PhaseChangedPayload struct {
	Phase domain.Phase `json:"phase"`
}

type MissionRevealedPayload struct {
	MissionID      string `json:"mission_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	CardsPerPlayer int    `json:"cards_per_player"`
	RoundNumber    int    `json:"round_number"`
}

type HandDealtPayload struct {
	PlayerID string        `json:"player_id"`
	Hand     []domain.Card `json:"hand"`
}

type HandUpdatedPayload struct {
	PlayerID string        `json:"player_id"`
	Hand     []domain.Card `json:"hand"`
}

type PeekStartedPayload struct {
	Duration time.Duration `json:"duration"`
}

type BetPlacedPayload struct {
	PlayerID string `json:"player_id"`
	Bet      int    `json:"bet"`
}

type TurnChangedPayload struct {
	Seat     int    `json:"seat"`
	PlayerID string `json:"player_id"`
}

type PassRequiredPayload struct {
	Count     int  `json:"count"`
	ToLeft    bool `json:"to_left"`
	WholeHand bool `json:"whole_hand"`
}

type ExchangeRequiredPayload struct {
	WinnerID string `json:"winner_id"`
}

type CardPlayedPayload struct {
	PlayerID      string      `json:"player_id"`
	Card          domain.Card `json:"card"`
	DeclaredValue int         `json:"declared_value,omitempty"`
	TrickNumber   int         `json:"trick_number"`
}

type TrickWonPayload struct {
	TrickNumber int         `json:"trick_number"`
	WinnerID    string      `json:"winner_id"`
	Card        domain.Card `json:"card"`
}

type RoundScoredPayload struct {
	RoundNumber int                 `json:"round_number"`
	Scores      []domain.RoundScore `json:"scores"`
}

type RoundEndedPayload struct {
	RoundNumber int `json:"round_number"`
}

type GameOverPayload struct {
	Standings    []domain.Standing `json:"standings"`
	EliminatedID string            `json:"eliminated_id"`
}
