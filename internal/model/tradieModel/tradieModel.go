package tradieModel

// RawTrade mirrors a row of the insider API. Numeric columns arrive either as
// strings ("$1,250.00", "+12%") or as numbers, so they stay untyped until conversion.
type RawTrade struct {
	X                    string `json:"x"`
	FilingDate           string `json:"filingDate"`
	TradeDate            string `json:"tradeDate"`
	Ticker               string `json:"ticker"`
	CompanyName          string `json:"companyName"`
	InsiderName          string `json:"insiderName"`
	Title                string `json:"title"`
	TradeType            string `json:"tradeType"`
	Price                any    `json:"price"`
	Quantity             any    `json:"quantity"`
	AlreadyOwned         any    `json:"alreadyOwned"`
	PercentOwnedIncrease any    `json:"percentOwnedIncrease"`
	MoneyValueIncrease   any    `json:"moneyValueIncrease"`
}

type RawChartPoint struct {
	Date  string `json:"date"`
	Close any    `json:"close"`
}

type RawAnalysis struct {
	Analysis string `json:"analysis"`
	Summary  string `json:"ai_summary"`
}
