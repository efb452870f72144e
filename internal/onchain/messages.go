package onchain

import "strconv"

// Message shapes mirror Solana's JSON-RPC responses, ported from
// domain/solana_api_messages/get_transaction_response.rs.

type rpcError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error *rpcError `json:"error,omitempty"`
	ID    uint64    `json:"id"`
}

// TransactionResponse is the decoded result of getTransaction.
type TransactionResponse struct {
	Result *TransactionResult `json:"result"`
	Error  *rpcError          `json:"error,omitempty"`
	ID     uint64             `json:"id"`
}

type TransactionResult struct {
	BlockTime   uint64              `json:"blockTime"`
	Slot        uint64              `json:"slot"`
	Transaction EncodedTransaction  `json:"transaction"`
	Meta        *TransactionMeta    `json:"meta"`
}

type EncodedTransaction struct {
	Signatures []string           `json:"signatures"`
	Message    TransactionMessage `json:"message"`
}

type TransactionMessage struct {
	AccountKeys []string `json:"accountKeys"`
}

type TransactionMeta struct {
	Err              any            `json:"err"`
	Fee              uint64         `json:"fee"`
	PreBalances      []uint64       `json:"preBalances"`
	PostBalances     []uint64       `json:"postBalances"`
	PreTokenBalances []TokenBalance `json:"preTokenBalances"`
	PostTokenBalances []TokenBalance `json:"postTokenBalances"`
}

type TokenBalance struct {
	Mint          string        `json:"mint"`
	Owner         *string       `json:"owner"`
	UiTokenAmount UiTokenAmount `json:"uiTokenAmount"`
}

type UiTokenAmount struct {
	Decimals uint8  `json:"decimals"`
	Amount   string `json:"amount"`
}

// ToFloat64 parses the raw integer amount and scales it by decimals. A parse
// failure yields 0.0 (a silent zero is "no contribution"), per spec §4.5.
func (u UiTokenAmount) ToFloat64() float64 {
	raw, err := strconv.ParseUint(u.Amount, 10, 64)
	if err != nil {
		return 0
	}
	scale := 1.0
	for i := uint8(0); i < u.Decimals; i++ {
		scale *= 10
	}
	return float64(raw) / scale
}

// TokenAccountBalanceResponse is the decoded result of getTokenAccountBalance.
type TokenAccountBalanceResponse struct {
	Result *TokenAccountBalanceResult `json:"result"`
	Error  *rpcError                  `json:"error,omitempty"`
	ID     uint64                     `json:"id"`
}

type TokenAccountBalanceResult struct {
	Value UiTokenAmount `json:"value"`
}

// BalanceResponse is the decoded result of getBalance.
type BalanceResponse struct {
	Result *BalanceResult `json:"result"`
	Error  *rpcError      `json:"error,omitempty"`
	ID     uint64         `json:"id"`
}

type BalanceResult struct {
	Value uint64 `json:"value"`
}
