// Package rpc is the gRPC front door: it exposes gateway.Service as the five
// methods spec §4.7 defines, using a JSON wire codec in place of compiled
// protobuf stubs (the wire schema itself is out of scope; see spec §1/§6). Request
// and response shapes are grounded on the proto message fields named throughout
// wallet_service.rs (InitRequest/InitResponse/SubscribeResponse/...).
package rpc

import (
	"strconv"

	"github.com/adred-codev/soltrace/internal/domain"
)

// InitRequest registers a wallet and its token watchlist.
type InitRequest struct {
	Wallet string   `json:"wallet"`
	Tokens []string `json:"tokens"`
}

// InitResponse carries the newly minted ClientId, a UUID v4 string the caller
// must echo back via the client-id metadata header on every later call.
type InitResponse struct {
	ClientID string `json:"client_id"`
}

// SubscribeRequest carries no body; the session is identified entirely by the
// client-id metadata header.
type SubscribeRequest struct{}

// SubscribeResponse is one server-streamed message: a rendered Trade or a
// lifecycle/error note from the upstream subscription.
type SubscribeResponse struct {
	Message string `json:"message"`
}

// UnsubscribeRequest carries no body.
type UnsubscribeRequest struct{}

// UnsubscribeResponse confirms the subscription was torn down.
type UnsubscribeResponse struct {
	Message string `json:"message"`
}

// HoldingsRequest carries no body.
type HoldingsRequest struct{}

// HoldingsResponse is a point-in-time balance snapshot.
type HoldingsResponse struct {
	Holdings []Holding `json:"holdings"`
}

// Holding mirrors domain.Holding over the wire.
type Holding struct {
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	Address  string   `json:"address"`
	Balance  string   `json:"balance"`
	USDPrice *float64 `json:"usd_price,omitempty"`
	USDValue *float64 `json:"usd_value,omitempty"`
}

// GetTradeRequest asks for the decoded Trade behind a signature.
type GetTradeRequest struct {
	Signature string `json:"signature"`
}

// GetTradeResponse carries the Trade, or a nil Trade when the signature produced
// none for this wallet.
type GetTradeResponse struct {
	Trade *Trade `json:"trade,omitempty"`
}

// Trade and Transfer mirror their domain counterparts over the wire.
type Trade struct {
	Kind string     `json:"kind"`
	From []Transfer `json:"from"`
	To   []Transfer `json:"to"`
}

type Transfer struct {
	Mint     string   `json:"mint"`
	Symbol   *string  `json:"symbol,omitempty"`
	Name     *string  `json:"name,omitempty"`
	Amount   float64  `json:"amount"`
	USDPrice *float64 `json:"usd_price,omitempty"`
}

func transferToWire(t domain.Transfer) Transfer {
	return Transfer{Mint: t.Mint, Symbol: t.Symbol, Name: t.Name, Amount: t.Amount, USDPrice: t.USDPrice}
}

func tradeToWire(t *domain.Trade) *Trade {
	if t == nil {
		return nil
	}
	from := make([]Transfer, len(t.From))
	for i, tr := range t.From {
		from[i] = transferToWire(tr)
	}
	to := make([]Transfer, len(t.To))
	for i, tr := range t.To {
		to[i] = transferToWire(tr)
	}
	return &Trade{Kind: t.Classify().String(), From: from, To: to}
}

func formatBalance(balance float64) string {
	return strconv.FormatFloat(balance, 'f', -1, 64)
}

func holdingToWire(h domain.Holding) Holding {
	return Holding{
		Name:     h.Name,
		Symbol:   h.Symbol,
		Address:  h.Address,
		Balance:  formatBalance(h.Balance),
		USDPrice: h.USDPrice,
		USDValue: h.USDValue,
	}
}
