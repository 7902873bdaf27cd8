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
	ErrResultNotFound       = errors.New("tournament result not found")
	ErrResultAlreadyExists  = errors.New("result already recorded for this session")
	ErrResultSessionInvalid = errors.New("result references an unknown session")
)

type ResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, result *models.TournamentResult) error
	GetBySession(ctx context.Context, sessionID string) (*models.TournamentResult, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) Create(ctx context.Context, exec SQLExecutor, res *models.TournamentResult) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	query := `
		INSERT INTO tournament_results
			(session_id, user_id, category, champion_id, runner_up_id,
			 total_choices_made, rounds_completed, completion_rate, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := executor.ExecContext(ctx, query,
		res.SessionID, res.UserID, res.Category, res.ChampionID, res.RunnerUpID,
		res.TotalChoicesMade, res.RoundsCompleted, res.CompletionRate, res.CompletedAt,
	)
	return r.handleResultError(err)
}

func (r *postgresResultRepository) GetBySession(ctx context.Context, sessionID string) (*models.TournamentResult, error) {
	query := `
		SELECT session_id, user_id, category, champion_id, runner_up_id,
		       total_choices_made, rounds_completed, completion_rate, completed_at
		FROM tournament_results
		WHERE session_id = $1`

	res := &models.TournamentResult{}
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&res.SessionID, &res.UserID, &res.Category, &res.ChampionID, &res.RunnerUpID,
		&res.TotalChoicesMade, &res.RoundsCompleted, &res.CompletionRate, &res.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament result for session %s: %w", sessionID, err)
	}
	return res, nil
}

func (r *postgresResultRepository) handleResultError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "tournament_results_pkey":
			return ErrResultAlreadyExists
		case "tournament_results_session_id_fkey":
			return ErrResultSessionInvalid
		}
	}
	return err
}
