package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/style-duel/models"
	"github.com/lib/pq"
)

var (
	ErrChoiceSessionInvalid = errors.New("choice references an unknown session")
	ErrChoiceSequenceTaken  = errors.New("matchup sequence already recorded for this session")
)

// ChoiceRepository — append-only журнал решений. Записи никогда не
// обновляются и не удаляются.
type ChoiceRepository interface {
	Create(ctx context.Context, exec SQLExecutor, choice *models.TournamentChoice) error
	ListBySession(ctx context.Context, sessionID string) ([]*models.TournamentChoice, error)
}

type postgresChoiceRepository struct {
	db *sql.DB
}

func NewPostgresChoiceRepository(db *sql.DB) ChoiceRepository {
	return &postgresChoiceRepository{db: db}
}

func (r *postgresChoiceRepository) Create(ctx context.Context, exec SQLExecutor, c *models.TournamentChoice) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	query := `
		INSERT INTO tournament_choices
			(session_id, round_number, matchup_sequence, option_a_id, option_b_id,
			 winner_id, loser_id, response_time_ms, is_speed_bonus)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, made_at`

	err := executor.QueryRowContext(ctx, query,
		c.SessionID, c.RoundNumber, c.MatchupSequence, c.OptionAID, c.OptionBID,
		c.WinnerID, c.LoserID, c.ResponseTimeMs, c.IsSpeedBonus,
	).Scan(&c.ID, &c.MadeAt)

	return r.handleChoiceError(err)
}

func (r *postgresChoiceRepository) ListBySession(ctx context.Context, sessionID string) ([]*models.TournamentChoice, error) {
	query := `
		SELECT id, session_id, round_number, matchup_sequence, option_a_id, option_b_id,
		       winner_id, loser_id, response_time_ms, is_speed_bonus, made_at
		FROM tournament_choices
		WHERE session_id = $1
		ORDER BY matchup_sequence ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query choices for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	choices := make([]*models.TournamentChoice, 0)
	for rows.Next() {
		var c models.TournamentChoice
		if scanErr := rows.Scan(
			&c.ID, &c.SessionID, &c.RoundNumber, &c.MatchupSequence, &c.OptionAID, &c.OptionBID,
			&c.WinnerID, &c.LoserID, &c.ResponseTimeMs, &c.IsSpeedBonus, &c.MadeAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan choice row: %w", scanErr)
		}
		choices = append(choices, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during choice rows iteration: %w", err)
	}
	return choices, nil
}

func (r *postgresChoiceRepository) handleChoiceError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "tournament_choices_session_id_fkey":
			return ErrChoiceSessionInvalid
		case "uniq_choice_session_sequence":
			return ErrChoiceSequenceTaken
		}
	}
	return err
}
