package models

import "time"

const (
	// RoleUser — роль по умолчанию.
	RoleUser = "user"
	// RoleAdmin — администратор back-office.
	RoleAdmin = "admin"
)

// User представляет учётную запись на сайте ассоциации.
type User struct {
	UUID         string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта, в нижнем регистре
	FullName     string    // Полное имя
	PasswordHash string    // Хэш пароля пользователя
	Role         string    // Роль пользователя, admin или user
	CreatedAt    time.Time // Дата создания
}
