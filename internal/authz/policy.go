// Package authz решает, кому доступен административный раздел.
package authz

import (
	"context"
	"strings"

	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

// Identity аутентифицированный пользователь запроса.
type Identity struct {
	UserUID string
	Email   string
	Role    string
}

// Policy единственный источник правил доступа администратора. Права дают
// только роль admin в учётной записи; адреса из allow-list зарезервированы за
// администраторами и не доступны для самостоятельной регистрации.
type Policy struct {
	admins map[string]struct{}
}

// NewPolicy создаёт Policy с allow-list адресов администраторов.
func NewPolicy(adminEmails []string) *Policy {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Policy{admins: admins}
}

// IsAdmin сообщает, является ли пользователь администратором.
func (p *Policy) IsAdmin(_ context.Context, id Identity) bool {
	return id.Role == models.RoleAdmin
}

// Reserved сообщает, что email принадлежит администратору из allow-list.
func (p *Policy) Reserved(email string) bool {
	_, ok := p.admins[strings.ToLower(strings.TrimSpace(email))]
	return ok
}
