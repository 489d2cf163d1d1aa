package model

type state int

const (
	DefaultState state = iota
	ExpectingSearchQuery
)

type Session struct {
	State  state       `json:"state"`
	UserID int64       `json:"userID"`
	Filter FilterState `json:"filter"`
}
