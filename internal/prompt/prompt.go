// Package prompt builds the fixed-template question sent to the language model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"stock-advisor/internal/types"
)

// Compose renders the prompt for ticker. It has no side effects and the same
// inputs always produce the same bytes. Missing numbers become "unknown".
func Compose(ticker string, snap types.Snapshot, headlines types.HeadlineSet) types.Prompt {
	var b strings.Builder

	fmt.Fprintf(&b, "The stock %s is currently priced at %s.\n", ticker, money(snap.Price))
	fmt.Fprintf(&b, "Trading volume: %s. 52-week high: %s. 52-week low: %s. Market cap: %s.\n",
		whole(snap.Volume), money(snap.High52w), money(snap.Low52w), whole(snap.MarketCap))

	if len(snap.Closes) == 0 {
		b.WriteString("Here is the recent closing-price trend: unknown.\n")
	} else {
		closes := make([]string, len(snap.Closes))
		for i, p := range snap.Closes {
			closes[i] = decimal.NewFromFloat(p.Close).Round(2).String()
		}
		fmt.Fprintf(&b, "Here is the %d-day closing-price trend: [%s].\n", len(closes), strings.Join(closes, ", "))
	}

	if len(headlines) > 0 {
		b.WriteString("Recent headlines:\n")
		n := len(headlines)
		if n > types.MaxHeadlines {
			n = types.MaxHeadlines
		}
		for _, h := range headlines[:n] {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}

	b.WriteString("\nBased on this information:\n")
	b.WriteString("1. Is the overall sentiment bullish, bearish or neutral?\n")
	b.WriteString("2. Comment briefly on the technical picture from the price data.\n")
	b.WriteString("3. Comment briefly on the sentiment of the news.\n")
	b.WriteString("4. Should I BUY, SELL, or HOLD? Justify your answer in a few lines.\n")

	return types.Prompt(b.String())
}

func money(v types.Value) string {
	f, ok := v.Get()
	if !ok {
		return types.UnknownToken
	}
	return "$" + decimal.NewFromFloat(f).Round(2).String()
}

func whole(v types.Value) string {
	f, ok := v.Get()
	if !ok {
		return types.UnknownToken
	}
	return decimal.NewFromFloat(f).Round(0).String()
}
