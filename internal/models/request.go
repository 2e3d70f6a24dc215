package models

import "time"

// Request is a want-ad for an item that is not in the catalog yet.
type Request struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequestorID int64     `json:"-"`
	Created     time.Time `json:"created"`
	Items       []*Item   `json:"items"`
}

type RequestInput struct {
	Description string
}
