// Package token is the adapter to the external fungible-token ledger. The
// core never reimplements transfer or tax semantics; it only consumes this
// capability. Whitelist/tax handling is entirely the ledger's concern.
package token

import (
	"context"
)

// Client is the consumed interface of the external token ledger.
type Client interface {
	// Transfer moves amount from the service's custody address to the
	// recipient.
	Transfer(ctx context.Context, to string, amount int64) error

	// TransferFrom pulls amount from a user's external balance into the
	// given address, using the allowance the user granted to custody.
	TransferFrom(ctx context.Context, from, to string, amount int64) error

	// BalanceOf returns the external token balance of an address.
	BalanceOf(ctx context.Context, address string) (int64, error)

	// Whitelisted reports whether an address is on the ledger's
	// tax-exemption list.
	Whitelisted(ctx context.Context, address string) (bool, error)
}
