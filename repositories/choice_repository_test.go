package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/style-duel/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoiceRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresChoiceRepository(db)
	madeAt := time.Now().UTC()

	rt := 1200
	choice := &models.TournamentChoice{
		SessionID:       "sess-1",
		RoundNumber:     1,
		MatchupSequence: 1,
		OptionAID:       1,
		OptionBID:       2,
		WinnerID:        1,
		LoserID:         2,
		ResponseTimeMs:  &rt,
		IsSpeedBonus:    true,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tournament_choices")).
		WithArgs("sess-1", 1, 1, int64(1), int64(2), int64(1), int64(2), rt, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "made_at"}).AddRow(int64(7), madeAt))

	err := repo.Create(context.Background(), nil, choice)
	require.NoError(t, err)
	assert.Equal(t, int64(7), choice.ID)
	assert.Equal(t, madeAt, choice.MadeAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChoiceRepositoryCreateSequenceTaken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresChoiceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tournament_choices")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uniq_choice_session_sequence"})

	err := repo.Create(context.Background(), nil, &models.TournamentChoice{SessionID: "sess-1"})
	assert.ErrorIs(t, err, ErrChoiceSequenceTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChoiceRepositoryCreateUnknownSession(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresChoiceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tournament_choices")).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "tournament_choices_session_id_fkey"})

	err := repo.Create(context.Background(), nil, &models.TournamentChoice{SessionID: "ghost"})
	assert.ErrorIs(t, err, ErrChoiceSessionInvalid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChoiceRepositoryListBySession(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresChoiceRepository(db)
	madeAt := time.Now().UTC()

	columns := []string{
		"id", "session_id", "round_number", "matchup_sequence", "option_a_id", "option_b_id",
		"winner_id", "loser_id", "response_time_ms", "is_speed_bonus", "made_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY matchup_sequence ASC")).
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), "sess-1", 1, 1, int64(1), int64(2), int64(1), int64(2), 900, true, madeAt).
			AddRow(int64(2), "sess-1", 1, 2, int64(3), int64(4), int64(4), int64(3), nil, false, madeAt))

	choices, err := repo.ListBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, choices, 2)
	assert.Equal(t, 1, choices[0].MatchupSequence)
	assert.Equal(t, 2, choices[1].MatchupSequence)
	require.NotNil(t, choices[0].ResponseTimeMs)
	assert.Equal(t, 900, *choices[0].ResponseTimeMs)
	assert.Nil(t, choices[1].ResponseTimeMs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChoiceRepositoryListBySessionEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresChoiceRepository(db)

	columns := []string{
		"id", "session_id", "round_number", "matchup_sequence", "option_a_id", "option_b_id",
		"winner_id", "loser_id", "response_time_ms", "is_speed_bonus", "made_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY matchup_sequence ASC")).
		WithArgs("sess-empty").
		WillReturnRows(sqlmock.NewRows(columns))

	choices, err := repo.ListBySession(context.Background(), "sess-empty")
	require.NoError(t, err)
	assert.Empty(t, choices)
	assert.NoError(t, mock.ExpectationsWereMet())
}
