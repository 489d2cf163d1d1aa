package cache

import (
	"fmt"
	"time"

	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	gocache "github.com/patrickmn/go-cache"
)

// ChartCache keeps chart series in process memory, they are small and change slowly.
type ChartCache struct {
	c *gocache.Cache
}

func NewChartCache(expiration time.Duration) *ChartCache {
	return &ChartCache{c: gocache.New(expiration, 2*expiration)}
}

func chartKey(ticker string, chartRange model.ChartRange) string {
	return fmt.Sprintf("%s:%s", ticker, chartRange)
}

func (c *ChartCache) GetChart(ticker string, chartRange model.ChartRange) ([]model.ChartPoint, bool) {
	v, ok := c.c.Get(chartKey(ticker, chartRange))
	if !ok {
		return nil, false
	}
	points, ok := v.([]model.ChartPoint)
	return points, ok
}

func (c *ChartCache) SetChart(ticker string, chartRange model.ChartRange, points []model.ChartPoint) {
	c.c.SetDefault(chartKey(ticker, chartRange), points)
}
