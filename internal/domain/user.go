package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Role struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	RoleID       string    `db:"role_id" json:"roleId"`
	RoleName     string    `db:"role_name" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

func (u *User) IsAdmin() bool { return u.RoleName == RoleAdmin }

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UserQuery filters and paginates the user listing.
type UserQuery struct {
	Search string
	Page   int
	Limit  int
}

type PageInfo struct {
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	Total           int  `json:"total"`
	Current         int  `json:"current"`
	Limit           int  `json:"limit"`
}

type UserPage struct {
	Edges    []*User  `json:"edges"`
	PageInfo PageInfo `json:"pageInfo"`
}
