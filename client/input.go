package client

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"go-card-bank/luhn"
)

var validate = validator.New()

// InputReader reads and validates console input. Invalid input is reported
// to the user and the surrounding flow is abandoned, never the session.
type InputReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewInputReader(in io.Reader, out io.Writer) *InputReader {
	return &InputReader{scanner: bufio.NewScanner(in), out: out}
}

// ReadLine prompts and returns the next trimmed input line.
func (r *InputReader) ReadLine(prompt string) string {
	if prompt != "" {
		fmt.Fprintln(r.out, prompt)
	}
	if !r.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(r.scanner.Text())
}

// ReadCardNumber reads a card number and checks its format and checksum
// before it goes anywhere near the store.
func (r *InputReader) ReadCardNumber(prompt string) (string, bool) {
	input := r.ReadLine(prompt)
	if err := validate.Var(input, "required,len=16,numeric"); err != nil {
		fmt.Fprintln(r.out, "Invalid card number.")
		return "", false
	}
	if !luhn.Validate(input) {
		fmt.Fprintln(r.out, "Invalid card number.")
		return "", false
	}
	return input, true
}

// ReadPIN reads a 4-digit PIN.
func (r *InputReader) ReadPIN(prompt string) (string, bool) {
	input := r.ReadLine(prompt)
	if err := validate.Var(input, "required,len=4,numeric"); err != nil {
		fmt.Fprintln(r.out, "PIN must be 4 digits.")
		return "", false
	}
	return input, true
}

// ReadAmount reads a monetary amount; both "." and "," work as the decimal
// separator.
func (r *InputReader) ReadAmount(prompt string) (float64, bool) {
	input := strings.ReplaceAll(r.ReadLine(prompt), ",", ".")
	amount, err := strconv.ParseFloat(input, 64)
	if err != nil {
		fmt.Fprintln(r.out, "Invalid amount. Please enter a number.")
		return 0, false
	}
	return amount, true
}
