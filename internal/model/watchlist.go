package model

// Watchlist keeps favorited trades in insertion order, unique by Identity.
// Mutating methods return a new slice and leave the receiver untouched.
type Watchlist []TradeRecord

func (w Watchlist) IndexOf(record TradeRecord) int {
	id := record.Identity()
	for i := range w {
		if w[i].Identity() == id {
			return i
		}
	}
	return -1
}

func (w Watchlist) Contains(record TradeRecord) bool {
	return w.IndexOf(record) >= 0
}

func (w Watchlist) FindByRef(ref string) (TradeRecord, bool) {
	for _, t := range w {
		if t.Ref() == ref {
			return t, true
		}
	}
	return TradeRecord{}, false
}

func (w Watchlist) Add(record TradeRecord) Watchlist {
	res := make(Watchlist, 0, len(w)+1)
	res = append(res, w...)
	return append(res, record.WithID())
}

// Remove drops the entry with the record's identity. removed is false when nothing matched.
func (w Watchlist) Remove(record TradeRecord) (res Watchlist, removed bool) {
	idx := w.IndexOf(record)
	if idx < 0 {
		return w, false
	}
	res = make(Watchlist, 0, len(w)-1)
	res = append(res, w[:idx]...)
	res = append(res, w[idx+1:]...)
	return res, true
}

func (w Watchlist) Toggle(record TradeRecord) (res Watchlist, added bool) {
	if res, removed := w.Remove(record); removed {
		return res, false
	}
	return w.Add(record), true
}

// Dedup collapses repeated identities, first occurrence wins.
func (w Watchlist) Dedup() Watchlist {
	seen := make(map[string]struct{}, len(w))
	res := make(Watchlist, 0, len(w))
	for _, t := range w {
		id := t.Identity()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, t.WithID())
	}
	return res
}
