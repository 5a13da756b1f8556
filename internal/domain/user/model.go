package user

import "time"

// User продавец маркетплейса. Каждый пользователь привязан к бизнесу,
// которым ограничены все операции каталога и синхронизации.
type User struct {
	ID         int
	BusinessID int
	Login      string
	Password   string // хэш
	CreatedAt  time.Time
}
