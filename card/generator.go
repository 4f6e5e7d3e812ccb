// Package card issues new card numbers and PINs.
package card

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"go-card-bank/luhn"
)

// sequenceLength is the width of the zero-padded account sequence embedded
// between the BIN and the check digit.
const sequenceLength = 9

// ErrMalformedNumber is returned when the last issued card number cannot be
// parsed back into a sequence.
var ErrMalformedNumber = errors.New("malformed last card number")

// NumberSource provides the most recently issued card number, or an empty
// string when none has been issued yet. The account repository satisfies it.
type NumberSource interface {
	LastCardNumber() (string, error)
}

type Generator struct {
	bin    string
	source NumberSource
	rand   *rand.Rand
}

func NewGenerator(bin string, source NumberSource) *Generator {
	return &Generator{
		bin:    bin,
		source: source,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewCardNumber returns the next card number: the BIN, the previous sequence
// incremented by one and zero-padded, and a Luhn check digit.
func (g *Generator) NewCardNumber() (string, error) {
	last, err := g.source.LastCardNumber()
	if err != nil {
		return "", fmt.Errorf("query last card number: %w", err)
	}

	var seq int64
	if last != "" {
		seq, err = g.sequenceOf(last)
		if err != nil {
			return "", err
		}
	}

	payload := g.bin + fmt.Sprintf("%0*d", sequenceLength, seq+1)
	check, err := luhn.CheckDigit(payload)
	if err != nil {
		return "", fmt.Errorf("compute check digit: %w", err)
	}
	return payload + strconv.Itoa(check), nil
}

// NewPIN returns a random zero-padded 4-digit PIN. PINs are not required to
// be unique across accounts.
func (g *Generator) NewPIN() string {
	return fmt.Sprintf("%04d", g.rand.Intn(10000))
}

func (g *Generator) sequenceOf(number string) (int64, error) {
	if len(number) != len(g.bin)+sequenceLength+1 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, number)
	}
	seq, err := strconv.ParseInt(number[len(g.bin):len(number)-1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, number)
	}
	return seq, nil
}
