package models

import "time"

// TournamentResult — финальный итог сессии, создаётся ровно один раз
// в той же транзакции, что и перевод сессии в completed.
// RunnerUpID — проигравший финальной пары, нужен подписчикам результатов.
type TournamentResult struct {
	SessionID        string    `json:"session_id" db:"session_id"`
	UserID           int       `json:"user_id" db:"user_id"`
	Category         string    `json:"category" db:"category"`
	ChampionID       int64     `json:"champion_id" db:"champion_id"`
	RunnerUpID       int64     `json:"runner_up_id" db:"runner_up_id"`
	TotalChoicesMade int       `json:"total_choices_made" db:"total_choices_made"`
	RoundsCompleted  int       `json:"rounds_completed" db:"rounds_completed"`
	CompletionRate   float64   `json:"completion_rate" db:"completion_rate"`
	CompletedAt      time.Time `json:"completed_at" db:"completed_at"`
}
