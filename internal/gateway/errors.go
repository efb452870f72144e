package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by Init's validation pass, per spec §4.7.
var (
	ErrInvalidWallet    = errors.New("invalid wallet address")
	ErrMissingTokens    = errors.New("missing tokens")
	ErrTokenUnavailable = errors.New("token is not available")
	ErrInternal         = errors.New("internal error")
)

// InvalidTokenError aggregates every malformed token address from a single Init
// call into one error, per spec §4.7's "Invalid tokens are returned as a single
// aggregated error".
type InvalidTokenError struct {
	Addrs []string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid token address(es): %s", strings.Join(e.Addrs, ", "))
}
