package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"go-card-bank/logger"
	"go-card-bank/model"
	"go-card-bank/repository"
)

var (
	ErrInvalidAmount       = errors.New("the amount must be positive")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrSameAccountTransfer = errors.New("cannot transfer money to the same account")
	ErrAccountNotFound     = errors.New("the account does not exist")
	ErrWrongPIN            = errors.New("wrong PIN")
)

// CardIssuer produces card numbers and PINs for new accounts. card.Generator
// implements it.
type CardIssuer interface {
	NewCardNumber() (string, error)
	NewPIN() string
}

// LedgerService enforces the monetary invariants and delegates durability to
// the account repository. It operates on transient account copies: callers
// hold an Account fetched at login, and the service updates that copy only
// after the matching durable write has succeeded.
type LedgerService struct {
	repo   repository.IAccountRepository
	issuer CardIssuer
}

func NewLedgerService(repo repository.IAccountRepository, issuer CardIssuer) *LedgerService {
	return &LedgerService{repo: repo, issuer: issuer}
}

// CreateAccount issues a new card number and PIN and persists the account
// with a zero balance.
func (s *LedgerService) CreateAccount() (*model.Account, error) {
	number, err := s.issuer.NewCardNumber()
	if err != nil {
		return nil, fmt.Errorf("issue card number: %w", err)
	}

	account := &model.Account{
		Number: number,
		PIN:    s.issuer.NewPIN(),
	}
	if err := s.repo.Insert(account); err != nil {
		return nil, fmt.Errorf("persist new account: %w", err)
	}

	logger.Log.WithField("card_number", account.Number).Info("Account created")
	return account, nil
}

// Authenticate looks up the account and compares the PIN. A missing account
// and a wrong PIN are reported as distinct errors.
func (s *LedgerService) Authenticate(cardNumber, pin string) (*model.Account, error) {
	account, err := s.repo.Get(cardNumber)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if account.PIN != pin {
		return nil, ErrWrongPIN
	}
	return account, nil
}

// Deposit adds a positive amount to the account balance and returns the new
// balance.
func (s *LedgerService) Deposit(account *model.Account, amount float64) (float64, error) {
	if !isPositiveAmount(amount) {
		return 0, ErrInvalidAmount
	}

	newBalance := account.Balance + amount
	if err := s.persistBalance(account.Number, newBalance); err != nil {
		return 0, err
	}
	account.Balance = newBalance

	logger.Log.WithFields(logrus.Fields{
		"card_number": account.Number,
		"amount":      amount,
	}).Info("Deposit completed")
	return newBalance, nil
}

// Withdraw subtracts a positive amount from the account balance, keeping it
// non-negative, and returns the new balance.
func (s *LedgerService) Withdraw(account *model.Account, amount float64) (float64, error) {
	if !isPositiveAmount(amount) {
		return 0, ErrInvalidAmount
	}
	if account.Balance < amount {
		return 0, ErrInsufficientFunds
	}

	newBalance := account.Balance - amount
	if err := s.persistBalance(account.Number, newBalance); err != nil {
		return 0, err
	}
	account.Balance = newBalance

	logger.Log.WithFields(logrus.Fields{
		"card_number": account.Number,
		"amount":      amount,
	}).Info("Withdrawal completed")
	return newBalance, nil
}

// TransferFunds moves money from the given account to another card. The
// store's transfer transaction is the sole atomic unit; the in-memory
// balance is decremented only after it commits.
func (s *LedgerService) TransferFunds(ctx context.Context, from *model.Account, toCard string, amount float64) error {
	if !isPositiveAmount(amount) {
		return ErrInvalidAmount
	}
	if toCard == from.Number {
		return ErrSameAccountTransfer
	}
	if _, err := s.repo.Get(toCard); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("look up destination account: %w", err)
	}
	if from.Balance < amount {
		return ErrInsufficientFunds
	}

	if err := s.repo.Transfer(ctx, from.Number, toCard, amount); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("transfer funds: %w", err)
	}
	from.Balance -= amount

	logger.Log.WithFields(logrus.Fields{
		"from_card": from.Number,
		"to_card":   toCard,
		"amount":    amount,
	}).Info("Transfer completed")
	return nil
}

// CloseAccount deletes the account if it still exists. Leftover balance is
// not a blocker.
func (s *LedgerService) CloseAccount(account *model.Account) error {
	if _, err := s.repo.Get(account.Number); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("look up account: %w", err)
	}
	if err := s.repo.Delete(account.Number); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("delete account: %w", err)
	}

	logger.Log.WithField("card_number", account.Number).Info("Account closed")
	return nil
}

// isPositiveAmount accepts only finite amounts greater than zero. Console
// input can produce NaN or Inf, and NaN in particular slips through a plain
// <= 0 check because every comparison with NaN is false.
func isPositiveAmount(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 0)
}

func (s *LedgerService) persistBalance(cardNumber string, newBalance float64) error {
	err := s.repo.UpdateBalance(cardNumber, newBalance)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}
