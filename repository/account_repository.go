package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"go-card-bank/logger"
	"go-card-bank/model"
)

var (
	// ErrNotFound is returned when no account has the given card number.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateCard is returned when inserting a card number that is
	// already taken.
	ErrDuplicateCard = errors.New("card number already exists")
)

// IAccountRepository is the durable account store. Every method is
// individually atomic; Transfer moves money between two rows in a single
// transaction.
type IAccountRepository interface {
	Insert(account *model.Account) error
	Get(cardNumber string) (*model.Account, error)
	UpdateBalance(cardNumber string, newBalance float64) error
	Delete(cardNumber string) error
	LastCardNumber() (string, error)
	Transfer(ctx context.Context, fromCard, toCard string, amount float64) error
}

type AccountRepository struct {
	DB      *sql.DB
	builder sq.StatementBuilderType
}

// NewAccountRepository wraps the database handle. The driver name selects
// the placeholder style so the same queries serve sqlite3 and postgres.
func NewAccountRepository(db *sql.DB, driver string) *AccountRepository {
	return &AccountRepository{
		DB:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholderFor(driver)),
	}
}

func placeholderFor(driver string) sq.PlaceholderFormat {
	if driver == "postgres" {
		return sq.Dollar
	}
	return sq.Question
}

// Insert adds a new account row.
func (r *AccountRepository) Insert(account *model.Account) error {
	log := logger.Log.WithField("card_number", account.Number)
	log.Info("Executing query to insert account")

	query, args, err := r.builder.
		Insert("cards").
		Columns("card_number", "pin", "balance").
		Values(account.Number, account.PIN, account.Balance).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := r.DB.Exec(query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCard
		}
		log.WithError(err).Error("Failed to insert account")
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// Get fetches the account with the given card number.
func (r *AccountRepository) Get(cardNumber string) (*model.Account, error) {
	query, args, err := r.builder.
		Select("card_number", "pin", "balance").
		From("cards").
		Where(sq.Eq{"card_number": cardNumber}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	account := &model.Account{}
	err = r.DB.QueryRow(query, args...).Scan(&account.Number, &account.PIN, &account.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Log.WithField("card_number", cardNumber).WithError(err).Error("Failed to query account")
		return nil, fmt.Errorf("query account: %w", err)
	}
	return account, nil
}

// UpdateBalance sets the balance of an existing account.
func (r *AccountRepository) UpdateBalance(cardNumber string, newBalance float64) error {
	log := logger.Log.WithFields(logrus.Fields{
		"card_number": cardNumber,
		"new_balance": newBalance,
	})
	log.Info("Executing query to update account balance")

	query, args, err := r.builder.
		Update("cards").
		Set("balance", newBalance).
		Where(sq.Eq{"card_number": cardNumber}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	res, err := r.DB.Exec(query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to update account balance")
		return fmt.Errorf("update balance: %w", err)
	}
	return requireRow(res)
}

// Delete removes the account with the given card number.
func (r *AccountRepository) Delete(cardNumber string) error {
	logger.Log.WithField("card_number", cardNumber).Info("Executing query to delete account")

	query, args, err := r.builder.
		Delete("cards").
		Where(sq.Eq{"card_number": cardNumber}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	res, err := r.DB.Exec(query, args...)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to delete account")
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res)
}

// LastCardNumber returns the most recently inserted card number, or an
// empty string when no account has ever been created.
func (r *AccountRepository) LastCardNumber() (string, error) {
	query, args, err := r.builder.
		Select("card_number").
		From("cards").
		OrderBy("id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build select query: %w", err)
	}

	var number string
	err = r.DB.QueryRow(query, args...).Scan(&number)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		logger.Log.WithError(err).Error("Failed to query last card number")
		return "", fmt.Errorf("query last card number: %w", err)
	}
	return number, nil
}

// Transfer debits one account and credits another inside a single
// transaction. If either card number is missing, nothing changes and
// ErrNotFound is returned.
func (r *AccountRepository) Transfer(ctx context.Context, fromCard, toCard string, amount float64) error {
	log := logger.Log.WithFields(logrus.Fields{
		"from_card": fromCard,
		"to_card":   toCard,
		"amount":    amount,
	})
	log.Info("Executing transfer transaction")

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transfer transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.adjustBalance(ctx, tx, fromCard, sq.Expr("balance - ?", amount)); err != nil {
		return fmt.Errorf("debit source account: %w", err)
	}
	if err := r.adjustBalance(ctx, tx, toCard, sq.Expr("balance + ?", amount)); err != nil {
		return fmt.Errorf("credit destination account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		log.WithError(err).Error("Failed to commit transfer")
		return fmt.Errorf("commit transfer: %w", err)
	}
	return nil
}

func (r *AccountRepository) adjustBalance(ctx context.Context, tx *sql.Tx, cardNumber string, delta sq.Sqlizer) error {
	query, args, err := r.builder.
		Update("cards").
		Set("balance", delta).
		Where(sq.Eq{"card_number": cardNumber}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow maps "no row touched" to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation recognizes the unique-constraint errors of both
// supported drivers.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}
	return false
}
