package models

import "time"

// SpeedBonusThresholdMs — выбор быстрее этого порога считается "быстрым".
const SpeedBonusThresholdMs = 3000

// TournamentChoice — неизменяемая запись одного решения пользователя.
// MatchupSequence — глобальный 1-индексированный номер пары в сессии,
// а не номер внутри раунда.
type TournamentChoice struct {
	ID              int64     `json:"id" db:"id"`
	SessionID       string    `json:"session_id" db:"session_id"`
	RoundNumber     int       `json:"round_number" db:"round_number"`
	MatchupSequence int       `json:"matchup_sequence" db:"matchup_sequence"`
	OptionAID       int64     `json:"option_a_id" db:"option_a_id"`
	OptionBID       int64     `json:"option_b_id" db:"option_b_id"`
	WinnerID        int64     `json:"winner_id" db:"winner_id"`
	LoserID         int64     `json:"loser_id" db:"loser_id"`
	ResponseTimeMs  *int      `json:"response_time_ms,omitempty" db:"response_time_ms"`
	IsSpeedBonus    bool      `json:"is_speed_bonus" db:"is_speed_bonus"`
	MadeAt          time.Time `json:"made_at" db:"made_at"`
}
