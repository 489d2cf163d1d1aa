package dbModel

import "time"

type User struct {
	UserID   int64     `db:"user_id"`
	ChatID   int64     `db:"chat_id"`
	DtCreate time.Time `db:"dt_create"`
}
