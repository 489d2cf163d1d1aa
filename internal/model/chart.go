package model

import "github.com/shopspring/decimal"

type ChartRange string

const (
	RangeOneDay     ChartRange = "1d"
	RangeOneWeek    ChartRange = "1w"
	RangeOneMonth   ChartRange = "1m"
	RangeThreeMonth ChartRange = "3m"
	RangeYTD        ChartRange = "ytd"
	RangeOneYear    ChartRange = "1y"
)

var ChartRanges = []ChartRange{RangeOneDay, RangeOneWeek, RangeOneMonth, RangeThreeMonth, RangeYTD, RangeOneYear}

func (r ChartRange) Valid() bool {
	for _, v := range ChartRanges {
		if v == r {
			return true
		}
	}
	return false
}

type ChartPoint struct {
	Date  string          `json:"date"`
	Close decimal.Decimal `json:"close"`
}

type ChartSummary struct {
	Ticker    string
	Range     ChartRange
	Points    int
	FirstDate string
	LastDate  string
	First     decimal.Decimal
	Last      decimal.Decimal
	Min       decimal.Decimal
	Max       decimal.Decimal
	ChangePct decimal.Decimal
}
