package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type UserShort struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type UserInput struct {
	Name  string
	Email string
}

// UserPatch carries a partial update; nil or blank fields keep the stored value.
type UserPatch struct {
	Name  *string
	Email *string
}
