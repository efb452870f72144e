package domain

import (
	"fmt"
	"strings"

	"github.com/adred-codev/soltrace/internal/format"
)

// String renders a Transfer the way a downstream CLI panel would print one line of
// it: label, amount, current USD value, and the price it was valued at.
func (t Transfer) String() string {
	priceStr, valueStr := "N/A", "N/A"
	if t.USDPrice != nil {
		priceStr = format.USD(*t.USDPrice)
		valueStr = format.USD(*t.USDPrice * t.Amount)
	}
	return fmt.Sprintf("  %s Amount: %s Current Value: %s (Price: %s)",
		t.label(), format.Token(t.Amount), valueStr, priceStr)
}

// String renders the full downstream stream message for a Trade: its classification
// header followed by its From and To legs.
func (t Trade) String() string {
	var b strings.Builder
	b.WriteString(t.Classify().String())
	b.WriteString("\t\nFrom:\t")
	for _, tr := range t.From {
		b.WriteString(tr.String())
	}
	b.WriteString("\nTo:\t")
	for _, tr := range t.To {
		b.WriteString(tr.String())
	}
	return b.String()
}
