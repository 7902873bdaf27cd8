package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/style-duel/brackets"
	"github.com/Dosada05/style-duel/models"
	"github.com/Dosada05/style-duel/repositories"
	"github.com/Dosada05/style-duel/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MatchupView — текущая пара с полностью разрешёнными записями изображений.
type MatchupView struct {
	OptionA *models.Image `json:"option_a"`
	OptionB *models.Image `json:"option_b"`
}

// SessionView — снимок сессии для клиента.
type SessionView struct {
	SessionID      string               `json:"session_id"`
	Category       string               `json:"category"`
	Status         models.SessionStatus `json:"status"`
	TournamentSize int                  `json:"tournament_size"`
	CurrentRound   int                  `json:"current_round"`
	TotalRounds    int                  `json:"total_rounds"`
	Matchup        *MatchupView         `json:"matchup,omitempty"`
	Progress       Progress             `json:"progress"`
	Resumed        bool                 `json:"resumed"`
}

// ChoiceOutcome — результат обработки одного выбора.
type ChoiceOutcome struct {
	IsComplete   bool                     `json:"is_complete"`
	Champion     *models.Image            `json:"champion,omitempty"`
	Result       *models.TournamentResult `json:"result,omitempty"`
	NextMatchup  *MatchupView             `json:"next_matchup,omitempty"`
	CurrentRound int                      `json:"current_round"`
	Progress     Progress                 `json:"progress"`
	IsSpeedBonus bool                     `json:"is_speed_bonus"`
}

type TournamentService interface {
	Start(ctx context.Context, userID int, category string, tournamentSize int) (*SessionView, error)
	GetActiveSession(ctx context.Context, userID int, category string) (*SessionView, error)
	SubmitChoice(ctx context.Context, sessionID string, winnerID int64, responseTimeMs *int) (*ChoiceOutcome, error)
	GetCategories(ctx context.Context) ([]models.CategorySummary, error)
	GetChoiceHistory(ctx context.Context, sessionID string) ([]*models.TournamentChoice, error)
	GetResult(ctx context.Context, sessionID string) (*models.TournamentResult, error)
}

type tournamentService struct {
	db          *sql.DB
	sessionRepo repositories.SessionRepository
	choiceRepo  repositories.ChoiceRepository
	resultRepo  repositories.ResultRepository
	imageRepo   repositories.ImageRepository
	uploader    storage.FileUploader
	publisher   ResultPublisher
	logger      *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	sessionRepo repositories.SessionRepository,
	choiceRepo repositories.ChoiceRepository,
	resultRepo repositories.ResultRepository,
	imageRepo repositories.ImageRepository,
	uploader storage.FileUploader,
	publisher ResultPublisher,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:          db,
		sessionRepo: sessionRepo,
		choiceRepo:  choiceRepo,
		resultRepo:  resultRepo,
		imageRepo:   imageRepo,
		uploader:    uploader,
		publisher:   publisher,
		logger:      logger,
	}
}

// Start запускает турнир либо возвращает уже идущую сессию пары
// (user, category): повторный вызов — это возобновление, а не ошибка.
func (s *tournamentService) Start(ctx context.Context, userID int, category string, tournamentSize int) (*SessionView, error) {
	existing, err := s.sessionRepo.GetActive(ctx, nil, userID, category)
	if err == nil {
		return s.buildSessionView(ctx, existing, true)
	}
	if !errors.Is(err, repositories.ErrSessionNotFound) {
		return nil, s.wrapStoreError(err)
	}

	if !models.IsAllowedTournamentSize(tournamentSize) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTournamentSize, tournamentSize)
	}

	drawn, err := s.imageRepo.DrawRandomApproved(ctx, category, tournamentSize)
	if err != nil {
		return nil, s.wrapStoreError(err)
	}
	if len(drawn) < tournamentSize {
		return nil, fmt.Errorf("%w: category %q has %d, need %d",
			ErrInsufficientCandidates, category, len(drawn), tournamentSize)
	}

	ids := make([]int64, len(drawn))
	for i, img := range drawn {
		ids[i] = img.ID
	}

	now := time.Now().UTC()
	session := &models.TournamentSession{
		ID:               uuid.NewString(),
		UserID:           userID,
		Category:         category,
		Status:           models.SessionActive,
		TournamentSize:   tournamentSize,
		TotalRounds:      totalRoundsFor(tournamentSize),
		CurrentRound:     1,
		RemainingImages:  ids,
		EliminatedImages: []int64{},
		StartedAt:        now,
		LastActivityAt:   now,
	}
	matchup, ok := brackets.NextMatchup(ids)
	if !ok {
		return nil, fmt.Errorf("%w: draw produced no matchup", ErrInsufficientCandidates)
	}
	session.CurrentMatchup = matchup

	// Создание — один атомарный INSERT; частичный уникальный индекс по
	// (user_id, category, status=active) закрывает гонку двух start.
	if err := s.sessionRepo.Create(ctx, nil, session); err != nil {
		if errors.Is(err, repositories.ErrDuplicateActiveSession) {
			s.logger.Info("lost session create race, resuming winner",
				slog.Int("user_id", userID), slog.String("category", category))
			winner, getErr := s.sessionRepo.GetActive(ctx, nil, userID, category)
			if getErr != nil {
				return nil, s.wrapStoreError(getErr)
			}
			return s.buildSessionView(ctx, winner, true)
		}
		return nil, s.wrapStoreError(err)
	}

	s.logger.Info("tournament session started",
		slog.String("session_id", session.ID),
		slog.Int("user_id", userID),
		slog.String("category", category),
		slog.Int("size", tournamentSize))

	return s.buildSessionView(ctx, session, false)
}

func (s *tournamentService) GetActiveSession(ctx context.Context, userID int, category string) (*SessionView, error) {
	session, err := s.sessionRepo.GetActive(ctx, nil, userID, category)
	if err != nil {
		return nil, s.wrapStoreError(err)
	}
	return s.buildSessionView(ctx, session, false)
}

// SubmitChoice обрабатывает один выбор как одну атомарную единицу работы:
// load-for-update, валидация, запись выбора, редукция сетки, сохранение.
// Проигрыш гонки на строке сессии ретраится один раз.
func (s *tournamentService) SubmitChoice(ctx context.Context, sessionID string, winnerID int64, responseTimeMs *int) (*ChoiceOutcome, error) {
	outcome, err := s.submitChoiceOnce(ctx, sessionID, winnerID, responseTimeMs)
	if errors.Is(err, ErrConcurrentModification) {
		s.logger.Warn("retrying choice after concurrent modification",
			slog.String("session_id", sessionID))
		outcome, err = s.submitChoiceOnce(ctx, sessionID, winnerID, responseTimeMs)
	}
	return outcome, err
}

func (s *tournamentService) submitChoiceOnce(ctx context.Context, sessionID string, winnerID int64, responseTimeMs *int) (*ChoiceOutcome, error) {
	var (
		outcome     *ChoiceOutcome
		nextPair    *models.Matchup
		finalResult *models.TournamentResult
	)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		session, err := s.sessionRepo.GetForUpdate(ctx, tx, sessionID)
		if err != nil {
			return s.wrapStoreError(err)
		}
		if session.Status != models.SessionActive {
			return fmt.Errorf("%w: session %s is %s", ErrSessionNotActive, session.ID, session.Status)
		}
		if session.CurrentMatchup == nil {
			return fmt.Errorf("%w: session %s has no pending matchup", ErrInvalidChoice, session.ID)
		}
		matchup := *session.CurrentMatchup
		if !matchup.Contains(winnerID) {
			return fmt.Errorf("%w: image %d", ErrInvalidChoice, winnerID)
		}
		loserID := matchup.Other(winnerID)

		isSpeedBonus := responseTimeMs != nil && *responseTimeMs < models.SpeedBonusThresholdMs
		choice := &models.TournamentChoice{
			SessionID:       session.ID,
			RoundNumber:     session.CurrentRound,
			MatchupSequence: session.ChoicesMade() + 1,
			OptionAID:       matchup.OptionAID,
			OptionBID:       matchup.OptionBID,
			WinnerID:        winnerID,
			LoserID:         loserID,
			ResponseTimeMs:  responseTimeMs,
			IsSpeedBonus:    isSpeedBonus,
		}
		if err := s.choiceRepo.Create(ctx, tx, choice); err != nil {
			return s.wrapStoreError(err)
		}

		newRemaining, newEliminated, _, err := brackets.ApplyChoice(
			session.RemainingImages, session.EliminatedImages, matchup, winnerID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidChoice, err)
		}

		now := time.Now().UTC()

		if len(newRemaining) == 1 {
			// Чемпион определён: результат и перевод в completed — в той же
			// транзакции, что и запись последнего выбора.
			result := &models.TournamentResult{
				SessionID:        session.ID,
				UserID:           session.UserID,
				Category:         session.Category,
				ChampionID:       newRemaining[0],
				RunnerUpID:       loserID,
				TotalChoicesMade: session.TournamentSize - 1,
				RoundsCompleted:  session.TotalRounds,
				CompletionRate:   1.0,
				CompletedAt:      now,
			}
			if err := s.resultRepo.Create(ctx, tx, result); err != nil {
				return s.wrapStoreError(err)
			}
			if err := s.sessionRepo.Finalize(ctx, tx, session.ID, now); err != nil {
				return s.wrapStoreError(err)
			}
			finalResult = result
			outcome = &ChoiceOutcome{
				IsComplete:   true,
				Result:       result,
				CurrentRound: session.CurrentRound,
				Progress:     progressFor(session.TournamentSize, 1),
				IsSpeedBonus: isSpeedBonus,
			}
			return nil
		}

		startCount := brackets.StartCountForRound(session.TournamentSize, session.CurrentRound)
		if brackets.RoundAdvanced(len(newRemaining), startCount) {
			session.CurrentRound++
		}
		next, _ := brackets.NextMatchup(newRemaining)

		session.RemainingImages = newRemaining
		session.EliminatedImages = newEliminated
		session.CurrentMatchup = next
		session.LastActivityAt = now
		if err := s.sessionRepo.Update(ctx, tx, session); err != nil {
			return s.wrapStoreError(err)
		}

		nextPair = next
		outcome = &ChoiceOutcome{
			IsComplete:   false,
			CurrentRound: session.CurrentRound,
			Progress:     progressFor(session.TournamentSize, len(newRemaining)),
			IsSpeedBonus: isSpeedBonus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Разрешение изображений и публикация — после коммита: сбой здесь
	// не должен откатить уже принятый выбор.
	if finalResult != nil {
		champion, err := s.imageRepo.GetByID(ctx, finalResult.ChampionID)
		if err != nil {
			s.logger.Error("failed to resolve champion image",
				slog.String("session_id", sessionID), slog.Any("error", err))
		} else {
			populateImageURLFunc(champion, s.uploader)
			outcome.Champion = champion
		}
		if s.publisher != nil {
			s.publisher.PublishResult(finalResult, outcome.Champion)
		}
		s.logger.Info("tournament completed",
			slog.String("session_id", sessionID),
			slog.Int64("champion_id", finalResult.ChampionID))
		return outcome, nil
	}

	view, err := s.resolveMatchupView(ctx, nextPair)
	if err != nil {
		return nil, err
	}
	outcome.NextMatchup = view
	return outcome, nil
}

func (s *tournamentService) GetCategories(ctx context.Context) ([]models.CategorySummary, error) {
	minSize := models.AllowedTournamentSizes[0]
	summaries, err := s.imageRepo.CountApprovedByCategory(ctx, minSize)
	if err != nil {
		return nil, s.wrapStoreError(err)
	}
	return summaries, nil
}

func (s *tournamentService) GetChoiceHistory(ctx context.Context, sessionID string) ([]*models.TournamentChoice, error) {
	if _, err := s.sessionRepo.GetByID(ctx, nil, sessionID); err != nil {
		return nil, s.wrapStoreError(err)
	}
	choices, err := s.choiceRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, s.wrapStoreError(err)
	}
	return choices, nil
}

func (s *tournamentService) GetResult(ctx context.Context, sessionID string) (*models.TournamentResult, error) {
	result, err := s.resultRepo.GetBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, s.wrapStoreError(err)
	}
	return result, nil
}

// buildSessionView разрешает текущую пару в полные записи изображений
// и считает прогресс.
func (s *tournamentService) buildSessionView(ctx context.Context, session *models.TournamentSession, resumed bool) (*SessionView, error) {
	view := &SessionView{
		SessionID:      session.ID,
		Category:       session.Category,
		Status:         session.Status,
		TournamentSize: session.TournamentSize,
		CurrentRound:   session.CurrentRound,
		TotalRounds:    session.TotalRounds,
		Progress:       progressFor(session.TournamentSize, len(session.RemainingImages)),
		Resumed:        resumed,
	}

	matchupView, err := s.resolveMatchupView(ctx, session.CurrentMatchup)
	if err != nil {
		return nil, err
	}
	view.Matchup = matchupView
	return view, nil
}

func (s *tournamentService) resolveMatchupView(ctx context.Context, matchup *models.Matchup) (*MatchupView, error) {
	if matchup == nil {
		return nil, nil
	}

	view := &MatchupView{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		img, err := s.imageRepo.GetByID(gCtx, matchup.OptionAID)
		if err != nil {
			return err
		}
		populateImageURLFunc(img, s.uploader)
		view.OptionA = img
		return nil
	})
	g.Go(func() error {
		img, err := s.imageRepo.GetByID(gCtx, matchup.OptionBID)
		if err != nil {
			return err
		}
		populateImageURLFunc(img, s.uploader)
		view.OptionB = img
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, s.wrapStoreError(err)
	}
	return view, nil
}

func (s *tournamentService) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ErrStorageUnavailable, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("rollback failed", slog.Any("error", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// wrapStoreError приводит ошибки слоя репозиториев к сервисным сентинелам.
func (s *tournamentService) wrapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, repositories.ErrSessionConcurrentRace):
		return ErrConcurrentModification
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, repositories.ErrDuplicateActiveSession):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
}
