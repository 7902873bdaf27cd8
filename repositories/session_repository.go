package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/style-duel/models"
	"github.com/lib/pq"
)

var (
	ErrSessionNotFound        = errors.New("tournament session not found")
	ErrDuplicateActiveSession = errors.New("active session already exists for this user and category")
	ErrSessionConcurrentRace  = errors.New("session row lost a concurrent update race")
)

type SessionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, session *models.TournamentSession) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.TournamentSession, error)
	GetActive(ctx context.Context, exec SQLExecutor, userID int, category string) (*models.TournamentSession, error)
	GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.TournamentSession, error)
	Update(ctx context.Context, exec SQLExecutor, session *models.TournamentSession) error
	Finalize(ctx context.Context, exec SQLExecutor, id string, completedAt time.Time) error
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const sessionColumns = `
	id, user_id, category, status, tournament_size, total_rounds, current_round,
	remaining_images, eliminated_images, current_option_a, current_option_b,
	started_at, last_activity_at, completed_at`

func (r *postgresSessionRepository) Create(ctx context.Context, exec SQLExecutor, s *models.TournamentSession) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_sessions (
			id, user_id, category, status, tournament_size, total_rounds, current_round,
			remaining_images, eliminated_images, current_option_a, current_option_b,
			started_at, last_activity_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	var optionA, optionB interface{}
	if s.CurrentMatchup != nil {
		optionA = s.CurrentMatchup.OptionAID
		optionB = s.CurrentMatchup.OptionBID
	}

	_, err := executor.ExecContext(ctx, query,
		s.ID, s.UserID, s.Category, s.Status, s.TournamentSize, s.TotalRounds, s.CurrentRound,
		pq.Array(s.RemainingImages), pq.Array(s.EliminatedImages), optionA, optionB,
		s.StartedAt, s.LastActivityAt,
	)
	return r.handleSessionError(err)
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.TournamentSession, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + sessionColumns + ` FROM tournament_sessions WHERE id = $1`
	return r.scanSession(executor.QueryRowContext(ctx, query, id))
}

// GetActive возвращает последнюю по времени старта активную сессию пары
// (user, category). Частичный уникальный индекс гарантирует, что такая
// сессия может быть только одна, но ORDER BY оставлен для устойчивости.
func (r *postgresSessionRepository) GetActive(ctx context.Context, exec SQLExecutor, userID int, category string) (*models.TournamentSession, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT` + sessionColumns + `
		FROM tournament_sessions
		WHERE user_id = $1 AND category = $2 AND status = $3
		ORDER BY started_at DESC
		LIMIT 1`
	return r.scanSession(executor.QueryRowContext(ctx, query, userID, category, models.SessionActive))
}

// GetForUpdate блокирует строку сессии на время транзакции (FOR UPDATE),
// закрывая гонку двух конкурентных submitChoice по одной сессии.
func (r *postgresSessionRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.TournamentSession, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + sessionColumns + ` FROM tournament_sessions WHERE id = $1 FOR UPDATE`
	return r.scanSession(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresSessionRepository) Update(ctx context.Context, exec SQLExecutor, s *models.TournamentSession) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournament_sessions SET
			status = $1,
			current_round = $2,
			remaining_images = $3,
			eliminated_images = $4,
			current_option_a = $5,
			current_option_b = $6,
			last_activity_at = $7
		WHERE id = $8`

	var optionA, optionB interface{}
	if s.CurrentMatchup != nil {
		optionA = s.CurrentMatchup.OptionAID
		optionB = s.CurrentMatchup.OptionBID
	}

	result, err := executor.ExecContext(ctx, query,
		s.Status, s.CurrentRound,
		pq.Array(s.RemainingImages), pq.Array(s.EliminatedImages),
		optionA, optionB, s.LastActivityAt,
		s.ID,
	)
	if err != nil {
		return r.handleSessionError(err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

// Finalize переводит активную сессию в completed, снимает текущую пару и
// проставляет completed_at. Условие status = active даёт exactly-once
// семантику: повторная финализация вернёт ErrSessionNotFound.
func (r *postgresSessionRepository) Finalize(ctx context.Context, exec SQLExecutor, id string, completedAt time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournament_sessions SET
			status = $1,
			current_option_a = NULL,
			current_option_b = NULL,
			completed_at = $2,
			last_activity_at = $2
		WHERE id = $3 AND status = $4`

	result, err := executor.ExecContext(ctx, query, models.SessionCompleted, completedAt, id, models.SessionActive)
	if err != nil {
		return r.handleSessionError(err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresSessionRepository) scanSession(row rowScanner) (*models.TournamentSession, error) {
	s := &models.TournamentSession{}
	var remaining, eliminated pq.Int64Array
	var optionA, optionB sql.NullInt64

	err := row.Scan(
		&s.ID, &s.UserID, &s.Category, &s.Status, &s.TournamentSize, &s.TotalRounds, &s.CurrentRound,
		&remaining, &eliminated, &optionA, &optionB,
		&s.StartedAt, &s.LastActivityAt, &s.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament session: %w", err)
	}

	s.RemainingImages = []int64(remaining)
	s.EliminatedImages = []int64(eliminated)
	if optionA.Valid && optionB.Valid {
		s.CurrentMatchup = &models.Matchup{OptionAID: optionA.Int64, OptionBID: optionB.Int64}
	}
	return s, nil
}

func (r *postgresSessionRepository) handleSessionError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "uniq_active_session_per_user_category" {
				return ErrDuplicateActiveSession
			}
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return ErrSessionConcurrentRace
		}
	}
	return err
}
