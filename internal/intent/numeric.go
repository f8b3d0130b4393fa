package intent

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ErrParse matches any *ParseError via errors.Is
var ErrParse = errors.New("invalid integer")

// ParseError reports a numeric capture group that is not a valid integer
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q as integer: %v", e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ParseCount parses a captured group as a base-10 integer. Leading zeros
// are accepted ("007" is 7). Values outside int64 fail with a ParseError
// wrapping strconv.ErrRange.
func ParseCount(group string) (int64, error) {
	text := strings.TrimSpace(group)
	if text == "" {
		return 0, &ParseError{Text: group, Err: strconv.ErrSyntax}
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, &ParseError{Text: group, Err: strconv.ErrSyntax}
		}
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, &ParseError{Text: group, Err: err}
	}
	return n, nil
}

// Cube returns n³ in arbitrary precision
func Cube(n int64) *big.Int {
	b := big.NewInt(n)
	return new(big.Int).Mul(b, new(big.Int).Mul(b, b))
}
