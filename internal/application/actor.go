package application

import "github.com/linskybing/fieldreport-go/internal/domain/user"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID    uint
	Username  string
	Role      user.Role
	IP        string
	UserAgent string
}

func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

// owns reports whether a may act on a record owned by ownerID.
func (a Actor) owns(ownerID uint) bool {
	return a.UserID == ownerID
}
