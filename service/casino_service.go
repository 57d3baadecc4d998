package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casinobot/events"
	"casinobot/models"
	"casinobot/wagering"

	log "github.com/sirupsen/logrus"
)

// Command names used in logs and metrics
const (
	CommandBalance  = "balance"
	CommandDaily    = "daily"
	CommandCoinflip = "coinflip"
	CommandSlots    = "slots"
	CommandHistory  = "history"
)

const maxHistoryLimit = 25

// Options configures the casino service
type Options struct {
	DailyPolicy wagering.DailyPolicy
	Clock       func() time.Time
	Observer    CommandObserver
}

type casinoService struct {
	uowFactory  UnitOfWorkFactory
	engine      *wagering.Engine
	dailyPolicy wagering.DailyPolicy
	clock       func() time.Time
	observer    CommandObserver
}

// NewCasinoService creates the command dispatcher. Zero options fall back to
// the default daily policy, the wall clock and no observer.
func NewCasinoService(uowFactory UnitOfWorkFactory, engine *wagering.Engine, opts Options) CasinoService {
	if engine == nil {
		engine = wagering.NewEngine(nil)
	}
	if opts.DailyPolicy == (wagering.DailyPolicy{}) {
		opts.DailyPolicy = wagering.DefaultDailyPolicy
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	return &casinoService{
		uowFactory:  uowFactory,
		engine:      engine,
		dailyPolicy: opts.DailyPolicy,
		clock:       opts.Clock,
		observer:    opts.Observer,
	}
}

func (s *casinoService) ShowBalance(ctx context.Context, accountID string) (*models.BalanceResult, error) {
	var result *models.BalanceResult
	err := s.withAccount(ctx, CommandBalance, accountID, func(uow UnitOfWork, account *models.Account) error {
		result = &models.BalanceResult{AccountID: account.ID, Balance: account.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *casinoService) ClaimDaily(ctx context.Context, accountID string) (*models.DailyResult, error) {
	var result *models.DailyResult
	err := s.withAccount(ctx, CommandDaily, accountID, func(uow UnitOfWork, account *models.Account) error {
		now := s.clock().Unix()
		outcome := wagering.DailyReward(now, account.LastDailyClaim, s.dailyPolicy)
		if !outcome.Eligible {
			return &CommandError{Reason: ReasonNotEligibleYet, SecondsRemaining: outcome.SecondsRemaining}
		}

		newBalance, err := s.applyDelta(ctx, uow, account, outcome.Amount, models.TransactionTypeDailyReward, map[string]any{
			"claimed_at":        now,
			"previous_claim_at": account.LastDailyClaim,
		})
		if err != nil {
			return err
		}
		if err := uow.AccountRepository().UpdateLastDailyClaim(ctx, account.ID, now); err != nil {
			return fmt.Errorf("failed to update daily claim: %w", err)
		}

		uow.EventBus().Publish(events.DailyClaimedEvent{
			AccountID: account.ID,
			Amount:    outcome.Amount,
			ClaimedAt: now,
		})

		result = &models.DailyResult{
			Amount:     outcome.Amount,
			NewBalance: newBalance,
			ClaimedAt:  now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *casinoService) PlayCoinflip(ctx context.Context, accountID string, bet int64, choice string) (*models.CoinflipResult, error) {
	if bet <= 0 {
		s.observer.ObserveCommand(CommandCoinflip, string(ReasonInvalidBet))
		return nil, invalidBet()
	}
	face, err := wagering.ParseFace(choice)
	if err != nil {
		s.observer.ObserveCommand(CommandCoinflip, string(ReasonInvalidChoice))
		return nil, &CommandError{Reason: ReasonInvalidChoice, Err: err}
	}

	var result *models.CoinflipResult
	err = s.withAccount(ctx, CommandCoinflip, accountID, func(uow UnitOfWork, account *models.Account) error {
		effective := wagering.ClampBet(bet, account.Balance)
		if effective == 0 {
			return invalidBet()
		}

		outcome := s.engine.Coinflip(effective, face)
		transactionType := models.TransactionTypeCoinflipLoss
		if outcome.Won {
			transactionType = models.TransactionTypeCoinflipWin
		}

		newBalance, err := s.applyDelta(ctx, uow, account, outcome.Delta, transactionType, map[string]any{
			"bet":     effective,
			"choice":  string(face),
			"outcome": string(outcome.Face),
		})
		if err != nil {
			return err
		}

		uow.EventBus().Publish(events.GamePlayedEvent{
			AccountID: account.ID,
			Game:      CommandCoinflip,
			Bet:       effective,
			Delta:     outcome.Delta,
			Won:       transactionType.IsWinType(),
		})

		result = &models.CoinflipResult{
			Bet:        effective,
			Choice:     string(face),
			Outcome:    string(outcome.Face),
			Won:        outcome.Won,
			Delta:      outcome.Delta,
			NewBalance: newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observer.ObserveChips(CommandCoinflip, result.Delta)
	return result, nil
}

func (s *casinoService) PlaySlots(ctx context.Context, accountID string, bet int64) (*models.SlotsResult, error) {
	if bet <= 0 {
		s.observer.ObserveCommand(CommandSlots, string(ReasonInvalidBet))
		return nil, invalidBet()
	}

	var result *models.SlotsResult
	err := s.withAccount(ctx, CommandSlots, accountID, func(uow UnitOfWork, account *models.Account) error {
		effective := wagering.ClampBet(bet, account.Balance)
		if effective == 0 {
			return invalidBet()
		}

		outcome := s.engine.Slots(effective)
		transactionType := models.TransactionTypeSlotsLoss
		if outcome.Delta > 0 {
			transactionType = models.TransactionTypeSlotsWin
		}

		reels := [3]string{string(outcome.Reels[0]), string(outcome.Reels[1]), string(outcome.Reels[2])}
		newBalance, err := s.applyDelta(ctx, uow, account, outcome.Delta, transactionType, map[string]any{
			"bet":        effective,
			"reels":      reels[:],
			"multiplier": outcome.Multiplier,
		})
		if err != nil {
			return err
		}

		uow.EventBus().Publish(events.GamePlayedEvent{
			AccountID:  account.ID,
			Game:       CommandSlots,
			Bet:        effective,
			Delta:      outcome.Delta,
			Won:        transactionType.IsWinType(),
			Multiplier: outcome.Multiplier,
		})

		result = &models.SlotsResult{
			Bet:        effective,
			Reels:      reels,
			Multiplier: outcome.Multiplier,
			Delta:      outcome.Delta,
			NewBalance: newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observer.ObserveChips(CommandSlots, result.Delta)
	return result, nil
}

func (s *casinoService) RecentHistory(ctx context.Context, accountID string, limit int) ([]*models.BalanceHistory, error) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, s.storageFailure(CommandHistory, accountID, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer uow.Rollback()

	history, err := uow.BalanceHistoryRepository().GetByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, s.storageFailure(CommandHistory, accountID, err)
	}
	if err := uow.Commit(); err != nil {
		return nil, s.storageFailure(CommandHistory, accountID, fmt.Errorf("failed to commit transaction: %w", err))
	}

	s.observer.ObserveCommand(CommandHistory, "ok")
	return history, nil
}

// withAccount runs fn inside one unit of work holding the account lock.
// Account creation is committed even when fn rejects the command, so the
// default record persists on first reference.
func (s *casinoService) withAccount(ctx context.Context, command, accountID string, fn func(uow UnitOfWork, account *models.Account) error) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return s.storageFailure(command, accountID, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer uow.Rollback() // No-op once committed

	account, created, err := uow.AccountRepository().GetOrCreate(ctx, accountID)
	if err != nil {
		return s.storageFailure(command, accountID, fmt.Errorf("failed to get account: %w", err))
	}

	if created {
		err := RecordBalanceChange(ctx, uow, &models.BalanceHistory{
			AccountID:       account.ID,
			BalanceBefore:   0,
			BalanceAfter:    account.Balance,
			ChangeAmount:    account.Balance,
			TransactionType: models.TransactionTypeInitial,
		})
		if err != nil {
			return s.storageFailure(command, accountID, err)
		}
	}

	fnErr := fn(uow, account)
	var cmdErr *CommandError
	if fnErr != nil && !errors.As(fnErr, &cmdErr) {
		return s.storageFailure(command, accountID, fnErr)
	}
	if cmdErr != nil && cmdErr.Reason == ReasonStorageError {
		return s.storageFailure(command, accountID, cmdErr.Err)
	}

	if err := uow.Commit(); err != nil {
		return s.storageFailure(command, accountID, fmt.Errorf("failed to commit transaction: %w", err))
	}

	if cmdErr != nil {
		s.observer.ObserveCommand(command, string(cmdErr.Reason))
		return cmdErr
	}
	s.observer.ObserveCommand(command, "ok")
	return nil
}

// applyDelta writes the new balance and its history entry
func (s *casinoService) applyDelta(ctx context.Context, uow UnitOfWork, account *models.Account, delta int64, transactionType models.TransactionType, metadata map[string]any) (int64, error) {
	newBalance := account.CalculateNewBalance(delta)
	if newBalance < 0 {
		return 0, storageError(fmt.Errorf("balance for account %s would become negative (%d)", account.ID, newBalance))
	}

	if err := uow.AccountRepository().UpdateBalance(ctx, account.ID, newBalance); err != nil {
		return 0, fmt.Errorf("failed to update balance: %w", err)
	}

	history := &models.BalanceHistory{
		AccountID:           account.ID,
		BalanceBefore:       account.Balance,
		BalanceAfter:        newBalance,
		ChangeAmount:        delta,
		TransactionType:     transactionType,
		TransactionMetadata: metadata,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return 0, err
	}

	return newBalance, nil
}

func (s *casinoService) storageFailure(command, accountID string, err error) error {
	log.WithFields(log.Fields{
		"command":   command,
		"accountID": accountID,
		"error":     err,
	}).Error("Casino command failed on storage")
	s.observer.ObserveCommand(command, string(ReasonStorageError))
	return storageError(err)
}
