package models

import "time"

// SessionStatus представляет статусы турнирной сессии, соответствующие ENUM в БД.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
	SessionPaused    SessionStatus = "paused"
)

// AllowedTournamentSizes — допустимые размеры турнира (степени двойки).
var AllowedTournamentSizes = []int{4, 8, 16, 32, 64, 128}

func IsAllowedTournamentSize(size int) bool {
	for _, s := range AllowedTournamentSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Matchup — пара изображений, ожидающая выбора пользователя.
type Matchup struct {
	OptionAID int64 `json:"option_a_id"`
	OptionBID int64 `json:"option_b_id"`
}

// Contains reports whether id is one of the two matchup options.
func (m Matchup) Contains(id int64) bool {
	return id == m.OptionAID || id == m.OptionBID
}

// Other returns the opposite option for id. Caller must ensure Contains(id).
func (m Matchup) Other(id int64) int64 {
	if id == m.OptionAID {
		return m.OptionBID
	}
	return m.OptionAID
}

// TournamentSession — прохождение одним пользователем сетки одной категории.
// remaining_images хранится как упорядоченный BIGINT[]: первые два элемента
// всегда образуют текущую пару, победитель уходит в конец списка.
type TournamentSession struct {
	ID               string        `json:"id" db:"id"`
	UserID           int           `json:"user_id" db:"user_id"`
	Category         string        `json:"category" db:"category"`
	Status           SessionStatus `json:"status" db:"status"`
	TournamentSize   int           `json:"tournament_size" db:"tournament_size"`
	TotalRounds      int           `json:"total_rounds" db:"total_rounds"`
	CurrentRound     int           `json:"current_round" db:"current_round"`
	RemainingImages  []int64       `json:"remaining_images" db:"remaining_images"`
	EliminatedImages []int64       `json:"eliminated_images" db:"eliminated_images"`
	CurrentMatchup   *Matchup      `json:"current_matchup,omitempty" db:"-"`
	StartedAt        time.Time     `json:"started_at" db:"started_at"`
	LastActivityAt   time.Time     `json:"last_activity_at" db:"last_activity_at"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
}

// ChoicesMade — сколько выборов уже обработано в этой сессии.
func (s *TournamentSession) ChoicesMade() int {
	return s.TournamentSize - len(s.RemainingImages)
}
