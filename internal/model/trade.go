package model

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const identityDelimiter = "|"

type TradeType string

const (
	Purchase TradeType = "Purchase"
	Sale     TradeType = "Sale"
)

// ParseTradeType accepts openinsider style values ("P - Purchase", "S - Sale") as well as plain words, any case.
func ParseTradeType(s string) (TradeType, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "p", strings.HasPrefix(v, "p -"), strings.Contains(v, "purchase"):
		return Purchase, true
	case v == "s", strings.HasPrefix(v, "s -"), strings.Contains(v, "sale"):
		return Sale, true
	}
	return "", false
}

// Percent is a signed percentage. NaN marks a value that could not be parsed.
type Percent float64

func (p Percent) IsNaN() bool {
	return math.IsNaN(float64(p))
}

func (p Percent) MarshalJSON() ([]byte, error) {
	if p.IsNaN() || math.IsInf(float64(p), 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(p), 'f', -1, 64), nil
}

func (p *Percent) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*p = Percent(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*p = Percent(f)
	return nil
}

type TradeRecord struct {
	ID                   string          `json:"id,omitempty"`
	Ticker               string          `json:"ticker"`
	CompanyName          string          `json:"companyName"`
	InsiderName          string          `json:"insiderName"`
	Title                string          `json:"title"`
	TradeType            TradeType       `json:"tradeType"`
	TradeDate            string          `json:"tradeDate"`
	FilingDate           string          `json:"filingDate"`
	Price                decimal.Decimal `json:"price"`
	Quantity             int64           `json:"quantity"`
	AlreadyOwned         int64           `json:"alreadyOwned"`
	PercentOwnedIncrease Percent         `json:"percentOwnedIncrease"`
	MoneyValueIncrease   decimal.Decimal `json:"moneyValueIncrease"`
}

// Identity is the surrogate key of a trade: ticker, insider, trade date, quantity and price.
// Two different trades by the same insider on the same day with equal size and price collide.
func (t TradeRecord) Identity() string {
	return strings.Join([]string{
		t.Ticker,
		t.InsiderName,
		t.TradeDate,
		strconv.FormatInt(t.Quantity, 10),
		t.Price.String(),
	}, identityDelimiter)
}

// Ref is a fixed-length handle for the identity, short enough for telegram callback data.
func (t TradeRecord) Ref() string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(t.Identity())).String()
}

// WithID returns a copy with ID set to the derived identity.
func (t TradeRecord) WithID() TradeRecord {
	t.ID = t.Identity()
	return t
}
