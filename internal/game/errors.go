package game

import "errors"

var (
	// ErrInvalidPhase means the action is not valid in the match's current
	// phase. Callers should re-fetch the state.
	ErrInvalidPhase = errors.New("game: action not valid in current phase")
	// ErrUnknownCard means the card id is not in the catalog.
	ErrUnknownCard = errors.New("game: unknown card")
	// ErrAlreadyUsed means the side already played the card this innings.
	ErrAlreadyUsed = errors.New("game: card already used this innings")
	// ErrPoolFull means the side has already played a full innings of cards.
	ErrPoolFull = errors.New("game: innings pool full")
	// ErrNoCardAvailable means the opponent has no card left to play. It
	// points at a catalog too small for a full innings.
	ErrNoCardAvailable = errors.New("game: no card available")
)
