package brackets

import (
	"testing"

	"github.com/Dosada05/style-duel/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextMatchup(t *testing.T) {
	tests := []struct {
		name      string
		remaining []int64
		want      *models.Matchup
		wantOK    bool
	}{
		{"four candidates", []int64{10, 20, 30, 40}, &models.Matchup{OptionAID: 10, OptionBID: 20}, true},
		{"two candidates", []int64{7, 8}, &models.Matchup{OptionAID: 7, OptionBID: 8}, true},
		{"single survivor", []int64{42}, nil, false},
		{"empty", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextMatchup(tt.remaining)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextMatchupDoesNotMutateInput(t *testing.T) {
	remaining := []int64{1, 2, 3, 4}
	_, _ = NextMatchup(remaining)
	assert.Equal(t, []int64{1, 2, 3, 4}, remaining)
}

func TestApplyChoice(t *testing.T) {
	remaining := []int64{1, 2, 3, 4}
	eliminated := []int64{}
	matchup := models.Matchup{OptionAID: 1, OptionBID: 2}

	newRemaining, newEliminated, loserID, err := ApplyChoice(remaining, eliminated, matchup, 1)
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 4, 1}, newRemaining, "winner rotates to the tail")
	assert.Equal(t, []int64{2}, newEliminated)
	assert.Equal(t, int64(2), loserID)

	// Входные срезы остаются нетронутыми.
	assert.Equal(t, []int64{1, 2, 3, 4}, remaining)
	assert.Empty(t, eliminated)
}

func TestApplyChoiceWinnerOrderIndependent(t *testing.T) {
	remaining := []int64{1, 2, 3, 4}
	matchup := models.Matchup{OptionAID: 2, OptionBID: 1} // swapped pair

	newRemaining, newEliminated, loserID, err := ApplyChoice(remaining, nil, matchup, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 2}, newRemaining)
	assert.Equal(t, []int64{1}, newEliminated)
	assert.Equal(t, int64(1), loserID)
}

func TestApplyChoiceInvalid(t *testing.T) {
	tests := []struct {
		name      string
		remaining []int64
		matchup   models.Matchup
		winnerID  int64
	}{
		{"winner not in matchup", []int64{1, 2, 3, 4}, models.Matchup{OptionAID: 1, OptionBID: 2}, 3},
		{"matchup not at head", []int64{1, 2, 3, 4}, models.Matchup{OptionAID: 3, OptionBID: 4}, 3},
		{"single survivor", []int64{1}, models.Matchup{OptionAID: 1, OptionBID: 2}, 1},
		{"empty remaining", nil, models.Matchup{OptionAID: 1, OptionBID: 2}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := ApplyChoice(tt.remaining, nil, tt.matchup, tt.winnerID)
			assert.ErrorIs(t, err, ErrInvalidChoice)
		})
	}
}

func TestRoundAdvanced(t *testing.T) {
	assert.True(t, RoundAdvanced(4, 8))
	assert.True(t, RoundAdvanced(1, 2))
	assert.False(t, RoundAdvanced(5, 8))
	assert.False(t, RoundAdvanced(2, 8))
	assert.False(t, RoundAdvanced(1, 1))
}

func TestStartCountForRound(t *testing.T) {
	assert.Equal(t, 8, StartCountForRound(8, 1))
	assert.Equal(t, 4, StartCountForRound(8, 2))
	assert.Equal(t, 2, StartCountForRound(8, 3))
	assert.Equal(t, 128, StartCountForRound(128, 1))
	assert.Equal(t, 2, StartCountForRound(128, 7))
}

// Полный прогон турнира: N участников решаются ровно за N-1 выборов,
// инварианты сохраняются после каждого шага.
func TestFullTournamentReduction(t *testing.T) {
	for _, size := range []int{4, 8, 16, 32, 64, 128} {
		remaining := make([]int64, size)
		for i := range remaining {
			remaining[i] = int64(i + 1)
		}
		eliminated := []int64{}
		round := 1
		startCount := size
		choices := 0

		for {
			matchup, ok := NextMatchup(remaining)
			if !ok {
				break
			}
			// Всегда побеждает второй вариант, чтобы проверить обе ветки пары.
			var err error
			var loser int64
			remaining, eliminated, loser, err = ApplyChoice(remaining, eliminated, *matchup, matchup.OptionBID)
			require.NoError(t, err)
			require.Equal(t, matchup.OptionAID, loser)
			choices++

			require.Equal(t, size, len(remaining)+len(eliminated), "conservation, size=%d", size)

			if RoundAdvanced(len(remaining), startCount) {
				round++
				startCount = len(remaining)
			}
		}

		assert.Equal(t, size-1, choices, "termination in N-1 choices, size=%d", size)
		assert.Len(t, remaining, 1)
		if size == 8 {
			assert.Equal(t, 4, round, "3 rounds completed plus final increment for size 8")
		}
	}
}

// Сценарий из приёмочных требований: размер 8, пошаговая проверка раундов.
func TestRoundAccountingSizeEight(t *testing.T) {
	remaining := []int64{1, 2, 3, 4, 5, 6, 7, 8}
	eliminated := []int64{}
	round := 1

	step := func() {
		matchup, ok := NextMatchup(remaining)
		require.True(t, ok)
		var err error
		remaining, eliminated, _, err = ApplyChoice(remaining, eliminated, *matchup, matchup.OptionAID)
		require.NoError(t, err)
		if RoundAdvanced(len(remaining), StartCountForRound(8, round)) {
			round++
		}
	}

	for i := 0; i < 4; i++ {
		step()
	}
	assert.Equal(t, 2, round)
	assert.Len(t, remaining, 4)

	for i := 0; i < 2; i++ {
		step()
	}
	assert.Equal(t, 3, round)
	assert.Len(t, remaining, 2)

	step()
	assert.Len(t, remaining, 1)
	assert.Len(t, eliminated, 7)
}
