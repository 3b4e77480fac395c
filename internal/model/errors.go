package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrNoPlayers      = errors.New("no players registered")

	// Round errors
	ErrNoActiveRound   = errors.New("no round is active")
	ErrRoundInProgress = errors.New("a round is already in progress")
	ErrNotYourTurn     = errors.New("not this player's turn to snap")

	// External service errors
	ErrClassification  = errors.New("image classification failed")
	ErrNoTagsExtracted = errors.New("no tags extracted from photo")
	ErrProfileFetch    = errors.New("profile fetch failed")

	// Lexicon errors
	ErrLexiconNotLoaded = errors.New("noun lexicon not loaded")
)
