package brackets

import (
	"errors"

	"github.com/Dosada05/style-duel/models"
)

// ErrInvalidChoice возвращается, когда победитель/пара не соответствуют
// голове списка оставшихся изображений.
var ErrInvalidChoice = errors.New("choice does not match the pending matchup")

// NextMatchup возвращает текущую пару: первые два id из remaining.
// ok == false, когда остался один кандидат (турнир решён) или список пуст.
// Входной срез не мутируется.
func NextMatchup(remaining []int64) (*models.Matchup, bool) {
	if len(remaining) < 2 {
		return nil, false
	}
	return &models.Matchup{OptionAID: remaining[0], OptionBID: remaining[1]}, true
}

// ApplyChoice обрабатывает один выбор. Пара matchup должна совпадать с головой
// remaining (порядок внутри пары не важен), winnerID — один из её участников.
// Оба id пары снимаются с головы списка, победитель дописывается в хвост,
// проигравший — в eliminated. Благодаря ротации победителя в хвост каждый
// выживший играет ровно один раз за раунд, а NextMatchup остаётся чисто
// позиционным. Входные срезы не мутируются.
func ApplyChoice(remaining, eliminated []int64, matchup models.Matchup, winnerID int64) (newRemaining, newEliminated []int64, loserID int64, err error) {
	if len(remaining) < 2 {
		return nil, nil, 0, ErrInvalidChoice
	}
	head := models.Matchup{OptionAID: remaining[0], OptionBID: remaining[1]}
	if !sameMatchup(head, matchup) {
		return nil, nil, 0, ErrInvalidChoice
	}
	if !matchup.Contains(winnerID) {
		return nil, nil, 0, ErrInvalidChoice
	}
	loserID = matchup.Other(winnerID)

	newRemaining = make([]int64, 0, len(remaining)-1)
	newRemaining = append(newRemaining, remaining[2:]...)
	newRemaining = append(newRemaining, winnerID)

	newEliminated = make([]int64, 0, len(eliminated)+1)
	newEliminated = append(newEliminated, eliminated...)
	newEliminated = append(newEliminated, loserID)

	return newRemaining, newEliminated, loserID, nil
}

// RoundAdvanced сообщает, завершился ли раунд: поле сократилось до половины
// от стартового размера раунда.
func RoundAdvanced(newRemainingCount, startCountForRound int) bool {
	return startCountForRound > 1 && newRemainingCount == startCountForRound/2
}

// StartCountForRound — размер поля в начале раунда round (1-индексация)
// для турнира из tournamentSize участников.
func StartCountForRound(tournamentSize, round int) int {
	count := tournamentSize
	for i := 1; i < round; i++ {
		count /= 2
	}
	return count
}

func sameMatchup(a, b models.Matchup) bool {
	if a.OptionAID == b.OptionAID && a.OptionBID == b.OptionBID {
		return true
	}
	return a.OptionAID == b.OptionBID && a.OptionBID == b.OptionAID
}
