package app

import (
	"errors"

	"pili/internal/domain"
)

// Player-input rejections. The engine leaves all state unchanged and returns
// one of these; the transport layer relays the reason only to the offending
// player. Bots must never trigger them in normal operation.
var (
	ErrWrongPhase        = errors.New("action not valid in current phase")
	ErrUnknownPlayer     = errors.New("player not found")
	ErrGameFull          = errors.New("room is full")
	ErrDuplicatePlayer   = errors.New("player already seated")
	ErrNotEnoughPlayers  = errors.New("need at least two players")
	ErrPlayersNotReady   = errors.New("all players must be ready")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrAlreadyBet        = errors.New("bet already placed")
	ErrAlreadyPlayed     = errors.New("already played in this trick")
	ErrCardNotInHand     = errors.New("card not in hand")
	ErrCardNotPlayable   = errors.New("card not allowed by mission rule")
	ErrBadJokerValue     = errors.New("joker value out of range")
	ErrJokerValueMissing = errors.New("joker play requires a declared value")
	ErrNoPassPending     = errors.New("no card pass expected")
	ErrWrongPassCount    = errors.New("wrong number of cards to pass")
	ErrAlreadySubmitted  = errors.New("already submitted")
	ErrNoDesignation     = errors.New("no designation expected")
	ErrBadTarget         = errors.New("invalid target player")
	ErrNoExchange        = errors.New("no exchange expected")
)

// IsPlayerError reports whether the error is a recoverable player-input
// rejection, as opposed to a programming-invariant violation that must be
// surfaced as an internal failure.
func IsPlayerError(err error) bool {
	switch {
	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrEmptyTrick),
		errors.Is(err, domain.ErrDeckCapacity):
		return false
	}
	return err != nil
}
