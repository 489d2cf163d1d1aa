package watchlistService

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
)

const blobVersion = 1

var errUnsupportedVersion = errors.New("unsupported watchlist version")

type blob struct {
	Version int                 `json:"version"`
	Trades  []model.TradeRecord `json:"trades"`
}

func encodeWatchlist(wl model.Watchlist) (string, error) {
	trades := []model.TradeRecord(wl)
	if trades == nil {
		trades = []model.TradeRecord{}
	}
	b, err := json.Marshal(blob{Version: blobVersion, Trades: trades})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeWatchlist reads the versioned object and also the bare array written before versioning.
func decodeWatchlist(s string) (model.Watchlist, error) {
	raw := bytes.TrimSpace([]byte(s))

	if len(raw) > 0 && raw[0] == '[' {
		var trades []model.TradeRecord
		if err := json.Unmarshal(raw, &trades); err != nil {
			return nil, err
		}
		return model.Watchlist(trades).Dedup(), nil
	}

	var b blob
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	if b.Version != blobVersion {
		return nil, fmt.Errorf("%w: %d", errUnsupportedVersion, b.Version)
	}
	return model.Watchlist(b.Trades).Dedup(), nil
}
