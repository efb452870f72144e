// Package addressutil validates base58 wallet/mint addresses and derives the
// canonical associated-token-account address for a (wallet, mint) pair, the way
// utils/address.rs did in the original implementation.
package addressutil

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
)

// Validate checks that address parses as a 32-byte base58 public key.
func Validate(address string) error {
	_, err := solana.PublicKeyFromBase58(address)
	return err
}

// DeriveTokenAccount returns the deterministic associated-token-account address for
// the given wallet and mint. Callers must validate both addresses first; this
// reproduces the chain's program-derived-address algorithm bit-for-bit via
// solana-go's own implementation, per spec.
func DeriveTokenAccount(wallet, mint string) (string, error) {
	walletKey, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return "", fmt.Errorf("invalid wallet: %w", err)
	}
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return "", fmt.Errorf("invalid mint: %w", err)
	}

	ata, _, err := associatedtokenaccount.FindAssociatedTokenAddress(walletKey, mintKey)
	if err != nil {
		return "", fmt.Errorf("derive associated token account: %w", err)
	}
	return ata.String(), nil
}
