package tgCallback

// Callback unique identifiers, must match [-\w]+
const (
	SelectTab      string = "select_tab" // payload: category
	ToggleSort     string = "toggle_sort"
	StartSearch    string = "start_search"
	ClearSearch    string = "clear_search"
	Page           string = "page"            // payload: page number
	ShowTrade      string = "show_trade"      // payload: trade ref
	ToggleFavorite string = "toggle_favorite" // payload: trade ref
	RemoveFavorite string = "remove_favorite" // payload: trade ref|watchlist page
	WatchlistPage  string = "watchlist_page"  // payload: page number
	ShowChart      string = "show_chart"      // payload: ticker:range
	BackToTrades   string = "back_to_trades"
)
