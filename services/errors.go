package services

import "errors"

// Общие ошибки движка турнира, используемые в маппинге HTTP.
var (
	// Ошибки валидации и бизнес-правил
	ErrInvalidTournamentSize  = errors.New("tournament size must be one of 4, 8, 16, 32, 64, 128")
	ErrInsufficientCandidates = errors.New("not enough approved images in the category")
	ErrInvalidChoice          = errors.New("winner is not part of the pending matchup")

	// Ошибки состояния сессии
	ErrSessionNotFound  = errors.New("tournament session not found")
	ErrSessionNotActive = errors.New("tournament session is not active")
	ErrResultNotFound   = errors.New("tournament result not found")

	// Гонка на строке сессии; один внутренний ретрай, потом наружу.
	ErrConcurrentModification = errors.New("session was modified concurrently")

	// Отказ хранилища; сессия остаётся в последнем закоммиченном состоянии.
	ErrStorageUnavailable = errors.New("storage is unavailable")
)
