package service

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"go-card-bank/logger"
	"go-card-bank/model"
	"go-card-bank/repository"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type mockAccountRepo struct{ mock.Mock }

func (m *mockAccountRepo) Insert(account *model.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *mockAccountRepo) Get(cardNumber string) (*model.Account, error) {
	args := m.Called(cardNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *mockAccountRepo) UpdateBalance(cardNumber string, newBalance float64) error {
	args := m.Called(cardNumber, newBalance)
	return args.Error(0)
}

func (m *mockAccountRepo) Delete(cardNumber string) error {
	args := m.Called(cardNumber)
	return args.Error(0)
}

func (m *mockAccountRepo) LastCardNumber() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockAccountRepo) Transfer(ctx context.Context, fromCard, toCard string, amount float64) error {
	args := m.Called(ctx, fromCard, toCard, amount)
	return args.Error(0)
}

type mockIssuer struct{ mock.Mock }

func (m *mockIssuer) NewCardNumber() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockIssuer) NewPIN() string {
	return m.Called().String(0)
}

func TestCreateAccount(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := new(mockAccountRepo)
		issuer := new(mockIssuer)
		issuer.On("NewCardNumber").Return("4000000000000010", nil).Once()
		issuer.On("NewPIN").Return("1234").Once()
		repo.On("Insert", mock.MatchedBy(func(a *model.Account) bool {
			return a.Number == "4000000000000010" && a.PIN == "1234" && a.Balance == 0
		})).Return(nil).Once()

		ledger := NewLedgerService(repo, issuer)
		account, err := ledger.CreateAccount()

		assert.NoError(t, err)
		assert.Equal(t, "4000000000000010", account.Number)
		assert.Equal(t, "1234", account.PIN)
		assert.Zero(t, account.Balance)
		repo.AssertExpectations(t)
		issuer.AssertExpectations(t)
	})

	t.Run("issuer error", func(t *testing.T) {
		repo := new(mockAccountRepo)
		issuer := new(mockIssuer)
		genErr := errors.New("store unavailable")
		issuer.On("NewCardNumber").Return("", genErr).Once()

		ledger := NewLedgerService(repo, issuer)
		_, err := ledger.CreateAccount()

		assert.ErrorIs(t, err, genErr)
		repo.AssertNotCalled(t, "Insert")
	})

	t.Run("storage error", func(t *testing.T) {
		repo := new(mockAccountRepo)
		issuer := new(mockIssuer)
		issuer.On("NewCardNumber").Return("4000000000000010", nil).Once()
		issuer.On("NewPIN").Return("1234").Once()
		insertErr := errors.New("disk full")
		repo.On("Insert", mock.Anything).Return(insertErr).Once()

		ledger := NewLedgerService(repo, issuer)
		_, err := ledger.CreateAccount()

		assert.ErrorIs(t, err, insertErr)
	})
}

func TestAuthenticate(t *testing.T) {
	stored := &model.Account{Number: "4000000000000010", PIN: "1234", Balance: 500}

	t.Run("success", func(t *testing.T) {
		repo := new(mockAccountRepo)
		repo.On("Get", stored.Number).Return(stored, nil).Once()

		ledger := NewLedgerService(repo, nil)
		account, err := ledger.Authenticate(stored.Number, "1234")

		assert.NoError(t, err)
		assert.Equal(t, stored, account)
	})

	t.Run("unknown card", func(t *testing.T) {
		repo := new(mockAccountRepo)
		repo.On("Get", "4000000000000028").Return(nil, repository.ErrNotFound).Once()

		ledger := NewLedgerService(repo, nil)
		_, err := ledger.Authenticate("4000000000000028", "1234")

		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("wrong pin", func(t *testing.T) {
		repo := new(mockAccountRepo)
		repo.On("Get", stored.Number).Return(stored, nil).Once()

		ledger := NewLedgerService(repo, nil)
		_, err := ledger.Authenticate(stored.Number, "0000")

		assert.ErrorIs(t, err, ErrWrongPIN)
	})
}

func TestDeposit(t *testing.T) {
	t.Run("rejects non-positive amounts", func(t *testing.T) {
		repo := new(mockAccountRepo)
		ledger := NewLedgerService(repo, nil)
		account := &model.Account{Number: "4000000000000010"}

		for _, amount := range []float64{-5, 0, math.NaN(), math.Inf(1), math.Inf(-1)} {
			_, err := ledger.Deposit(account, amount)
			assert.ErrorIs(t, err, ErrInvalidAmount, "amount %v", amount)
		}
		assert.Zero(t, account.Balance)
		repo.AssertNotCalled(t, "UpdateBalance")
	})

	t.Run("adds to zero balance", func(t *testing.T) {
		repo := new(mockAccountRepo)
		repo.On("UpdateBalance", "4000000000000010", 100.0).Return(nil).Once()

		ledger := NewLedgerService(repo, nil)
		account := &model.Account{Number: "4000000000000010"}
		newBalance, err := ledger.Deposit(account, 100)

		assert.NoError(t, err)
		assert.Equal(t, 100.0, newBalance)
		assert.Equal(t, 100.0, account.Balance)
		repo.AssertExpectations(t)
	})

	t.Run("keeps copy untouched on storage error", func(t *testing.T) {
		repo := new(mockAccountRepo)
		repo.On("UpdateBalance", "4000000000000010", 100.0).
			Return(errors.New("disk full")).Once()

		ledger := NewLedgerService(repo, nil)
		account := &model.Account{Number: "4000000000000010"}
		_, err := ledger.Deposit(account, 100)

		assert.Error(t, err)
		assert.Zero(t, account.Balance)
	})
}

func TestWithdraw(t *testing.T) {
	t.Run("rejects non-finite amounts", func(t *testing.T) {
		repo := new(mockAccountRepo)
		ledger := NewLedgerService(repo, nil)
		account := &model.Account{Number: "4000000000000010", Balance: 500}

		for _, amount := range []float64{math.NaN(), math.Inf(1)} {
			_, err := ledger.Withdraw(account, amount)
			assert.ErrorIs(t, err, ErrInvalidAmount, "amount %v", amount)
		}
		assert.Equal(t, 500.0, account.Balance)
		repo.AssertNotCalled(t, "UpdateBalance")
	})

	t.Run("insufficient funds", func(t *testing.T) {
		repo := new(mockAccountRepo)
		ledger := NewLedgerService(repo, nil)
		account := &model.Account{Number: "4000000000000010", Balance: 50}

		_, err := ledger.Withdraw(account, 100)

		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Equal(t, 50.0, account.Balance)
		repo.AssertNotCalled(t, "UpdateBalance")
	})

	t.Run("success", func(t *testing.T) {
		repo := new(mockAccountRepo)
		repo.On("UpdateBalance", "4000000000000010", 300.0).Return(nil).Once()

		ledger := NewLedgerService(repo, nil)
		account := &model.Account{Number: "4000000000000010", Balance: 500}
		newBalance, err := ledger.Withdraw(account, 200)

		assert.NoError(t, err)
		assert.Equal(t, 300.0, newBalance)
		assert.Equal(t, 300.0, account.Balance)
	})
}

func TestTransferFunds(t *testing.T) {
	ctx := context.Background()
	dest := &model.Account{Number: "4000000000000028", PIN: "5678", Balance: 0}

	t.Run("same account", func(t *testing.T) {
		repo := new(mockAccountRepo)
		ledger := NewLedgerService(repo, nil)
		from := &model.Account{Number: "4000000000000010", Balance: 500}

		err := ledger.TransferFunds(ctx, from, from.Number, 10)

		assert.ErrorIs(t, err, ErrSameAccountTransfer)
		repo.AssertNotCalled(t, "Get")
	})

	t.Run("invalid amount", func(t *testing.T) {
		repo := new(mockAccountRepo)
		ledger := NewLedgerService(repo, nil)
		from := &model.Account{Number: "4000000000000010", Balance: 500}

		for _, amount := range []float64{-1, 0, math.NaN(), math.Inf(1)} {
			err := ledger.TransferFunds(ctx, from, dest.Number, amount)
			assert.ErrorIs(t, err, ErrInvalidAmount, "amount %v", amount)
		}
		repo.AssertNotCalled(t, "Transfer")
	})

	t.Run("destination missing", func(t *testing.T) {
		repo := new(mockAccountRepo)
		repo.On("Get", dest.Number).Return(nil, repository.ErrNotFound).Once()

		ledger := NewLedgerService(repo, nil)
		from := &model.Account{Number: "4000000000000010", Balance: 500}
		err := ledger.TransferFunds(ctx, from, dest.Number, 10)

		assert.ErrorIs(t, err, ErrAccountNotFound)
		repo.AssertNotCalled(t, "Transfer")
	})

	t.Run("insufficient funds", func(t *testing.T) {
		repo := new(mockAccountRepo)
		repo.On("Get", dest.Number).Return(dest, nil).Once()

		ledger := NewLedgerService(repo, nil)
		from := &model.Account{Number: "4000000000000010", Balance: 50}
		err := ledger.TransferFunds(ctx, from, dest.Number, 100)

		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Equal(t, 50.0, from.Balance)
		repo.AssertNotCalled(t, "Transfer")
	})

	t.Run("success decrements source copy", func(t *testing.T) {
		repo := new(mockAccountRepo)
		repo.On("Get", dest.Number).Return(dest, nil).Once()
		repo.On("Transfer", ctx, "4000000000000010", dest.Number, 200.0).Return(nil).Once()

		ledger := NewLedgerService(repo, nil)
		from := &model.Account{Number: "4000000000000010", Balance: 500}
		err := ledger.TransferFunds(ctx, from, dest.Number, 200)

		assert.NoError(t, err)
		assert.Equal(t, 300.0, from.Balance)
		repo.AssertExpectations(t)
	})

	t.Run("storage failure leaves copy untouched", func(t *testing.T) {
		repo := new(mockAccountRepo)
		repo.On("Get", dest.Number).Return(dest, nil).Once()
		repo.On("Transfer", ctx, "4000000000000010", dest.Number, 200.0).
			Return(errors.New("commit failed")).Once()

		ledger := NewLedgerService(repo, nil)
		from := &model.Account{Number: "4000000000000010", Balance: 500}
		err := ledger.TransferFunds(ctx, from, dest.Number, 200)

		assert.Error(t, err)
		assert.Equal(t, 500.0, from.Balance)
	})
}

func TestCloseAccount(t *testing.T) {
	account := &model.Account{Number: "4000000000000010", Balance: 300}

	t.Run("success", func(t *testing.T) {
		repo := new(mockAccountRepo)
		repo.On("Get", account.Number).Return(account, nil).Once()
		repo.On("Delete", account.Number).Return(nil).Once()

		ledger := NewLedgerService(repo, nil)
		assert.NoError(t, ledger.CloseAccount(account))
		repo.AssertExpectations(t)
	})

	t.Run("already gone", func(t *testing.T) {
		repo := new(mockAccountRepo)
		repo.On("Get", account.Number).Return(nil, repository.ErrNotFound).Once()

		ledger := NewLedgerService(repo, nil)
		err := ledger.CloseAccount(account)

		assert.ErrorIs(t, err, ErrAccountNotFound)
		repo.AssertNotCalled(t, "Delete")
	})
}
