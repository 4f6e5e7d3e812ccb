// Package client is the interactive console shell around the ledger. It
// renders domain errors as messages and keeps the session alive; storage
// errors abort only the flow they occurred in.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go-card-bank/logger"
	"go-card-bank/model"
	"go-card-bank/service"
)

type Client struct {
	ledger *service.LedgerService
	reader *InputReader
	out    io.Writer
}

func NewClient(ledger *service.LedgerService, reader *InputReader, out io.Writer) *Client {
	return &Client{ledger: ledger, reader: reader, out: out}
}

// Run drives the main menu until the user exits or input runs out.
func (c *Client) Run(ctx context.Context) {
	for {
		c.printMainMenu()
		switch c.reader.ReadLine("Enter your choice:") {
		case "1":
			c.createAccount()
		case "2":
			c.login(ctx)
		case "3", "":
			fmt.Fprintln(c.out, "Exiting application...")
			return
		default:
			fmt.Fprintln(c.out, "Invalid option.")
		}
	}
}

func (c *Client) createAccount() {
	account, err := c.ledger.CreateAccount()
	if err != nil {
		logger.Log.WithError(err).Error("Account creation failed")
		fmt.Fprintln(c.out, "Failed to create account:", err)
		return
	}
	fmt.Fprintln(c.out, "Your card number:")
	fmt.Fprintln(c.out, account.Number)
	fmt.Fprintln(c.out, "Your card PIN:")
	fmt.Fprintln(c.out, account.PIN)
}

func (c *Client) login(ctx context.Context) {
	cardNumber, ok := c.reader.ReadCardNumber("Enter card number:")
	if !ok {
		return
	}
	pin, ok := c.reader.ReadPIN("Enter PIN:")
	if !ok {
		return
	}

	account, err := c.ledger.Authenticate(cardNumber, pin)
	if err != nil {
		if isDomainError(err) {
			fmt.Fprintln(c.out, "Login failed:", err)
		} else {
			logger.Log.WithError(err).Error("Login failed")
			fmt.Fprintln(c.out, "Database error:", err)
		}
		return
	}

	fmt.Fprintln(c.out, "Logged in successfully!")
	c.accountMenu(ctx, account)
}

func (c *Client) accountMenu(ctx context.Context, account *model.Account) {
	for {
		c.printAccountMenu()
		switch c.reader.ReadLine("Enter your choice:") {
		case "1":
			fmt.Fprintln(c.out, "Balance:", account.Balance)
		case "2":
			c.addIncome(account)
		case "3":
			c.withdraw(account)
		case "4":
			c.transfer(ctx, account)
		case "5":
			if c.closeAccount(account) {
				return
			}
		case "6", "0", "":
			fmt.Fprintln(c.out, "Logged out.")
			return
		default:
			fmt.Fprintln(c.out, "Invalid option.")
		}
	}
}

func (c *Client) addIncome(account *model.Account) {
	amount, ok := c.reader.ReadAmount("Enter income:")
	if !ok {
		return
	}
	if _, err := c.ledger.Deposit(account, amount); err != nil {
		c.reportError("Invalid amount:", err)
		return
	}
	fmt.Fprintln(c.out, "Income added!")
}

func (c *Client) withdraw(account *model.Account) {
	amount, ok := c.reader.ReadAmount("Enter amount to withdraw:")
	if !ok {
		return
	}
	if _, err := c.ledger.Withdraw(account, amount); err != nil {
		c.reportError("Withdrawal failed:", err)
		return
	}
	fmt.Fprintln(c.out, "Withdrawal successful!")
}

func (c *Client) transfer(ctx context.Context, account *model.Account) {
	toCard, ok := c.reader.ReadCardNumber("Enter destination card number:")
	if !ok {
		return
	}
	amount, ok := c.reader.ReadAmount("Enter amount:")
	if !ok {
		return
	}
	if err := c.ledger.TransferFunds(ctx, account, toCard, amount); err != nil {
		c.reportError("Transfer failed:", err)
		return
	}
	fmt.Fprintln(c.out, "Transfer successful!")
}

func (c *Client) closeAccount(account *model.Account) bool {
	if err := c.ledger.CloseAccount(account); err != nil {
		c.reportError("Close failed:", err)
		return false
	}
	fmt.Fprintln(c.out, "Account closed.")
	return true
}

func (c *Client) reportError(prefix string, err error) {
	if isDomainError(err) {
		fmt.Fprintln(c.out, prefix, err)
		return
	}
	logger.Log.WithError(err).Error("Operation failed")
	fmt.Fprintln(c.out, "Database error:", err)
}

func isDomainError(err error) bool {
	return errors.Is(err, service.ErrInvalidAmount) ||
		errors.Is(err, service.ErrInsufficientFunds) ||
		errors.Is(err, service.ErrSameAccountTransfer) ||
		errors.Is(err, service.ErrAccountNotFound) ||
		errors.Is(err, service.ErrWrongPIN)
}

func (c *Client) printMainMenu() {
	fmt.Fprintln(c.out, "=== Main menu ===")
	fmt.Fprintln(c.out, "1. Create an account")
	fmt.Fprintln(c.out, "2. Log into account")
	fmt.Fprintln(c.out, "3. Exit")
}

func (c *Client) printAccountMenu() {
	fmt.Fprintln(c.out, "=== Account menu ===")
	fmt.Fprintln(c.out, "1. Balance")
	fmt.Fprintln(c.out, "2. Add income")
	fmt.Fprintln(c.out, "3. Withdraw")
	fmt.Fprintln(c.out, "4. Do transfer")
	fmt.Fprintln(c.out, "5. Close account")
	fmt.Fprintln(c.out, "6. Log out")
	fmt.Fprintln(c.out, "0. Exit")
}
