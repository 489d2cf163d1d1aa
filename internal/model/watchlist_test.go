package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func trade(ticker string, qty int64) TradeRecord {
	return TradeRecord{Ticker: ticker, InsiderName: "Jane", TradeDate: "2024-01-02", Quantity: qty, Price: decimal.NewFromInt(10)}
}

func TestToggle_IsInvolution(t *testing.T) {
	wl := Watchlist{trade("AAA", 1), trade("BBB", 2)}
	rec := trade("CCC", 3)

	added, ok := wl.Toggle(rec)
	if !ok || len(added) != 3 {
		t.Fatalf("Expected record added, got %v %v", added, ok)
	}
	if added[2].ID != rec.Identity() {
		t.Errorf("Expected stored copy with id, got %q", added[2].ID)
	}
	if len(wl) != 2 {
		t.Error("Toggle must not modify the receiver")
	}

	removed, ok := added.Toggle(rec)
	if ok || len(removed) != 2 {
		t.Fatalf("Expected record removed, got %v %v", removed, ok)
	}
	for i := range wl {
		if removed[i].Identity() != wl[i].Identity() {
			t.Errorf("Order changed at %d", i)
		}
	}
}

func TestRemove_Absent(t *testing.T) {
	wl := Watchlist{trade("AAA", 1)}

	res, removed := wl.Remove(trade("ZZZ", 1))
	if removed || len(res) != 1 {
		t.Errorf("Expected no-op, got %v %v", res, removed)
	}
}

func TestFindByRef(t *testing.T) {
	rec := trade("BBB", 2)
	wl := Watchlist{trade("AAA", 1), rec}

	got, ok := wl.FindByRef(rec.Ref())
	if !ok || got.Ticker != "BBB" {
		t.Errorf("Expected BBB, got %v %v", got, ok)
	}

	if _, ok = wl.FindByRef("missing"); ok {
		t.Error("Expected miss")
	}
}

func TestDedup_FirstWins(t *testing.T) {
	first := trade("AAA", 1)
	first.CompanyName = "first"
	dup := first
	dup.CompanyName = "second"

	res := Watchlist{first, trade("BBB", 1), dup}.Dedup()
	if len(res) != 2 || res[0].CompanyName != "first" {
		t.Errorf("Unexpected dedup result %v", res)
	}
}
