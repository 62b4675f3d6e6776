package models

import "time"

// Session is a server-side login record referenced by the token's ID claim.
type Session struct {
	ID     string    `json:"sid"`
	UserID string    `json:"userId"`
	Data   string    `json:"-"` // JSON blob, e.g. login provider and user agent
	Expire time.Time `json:"expire"`
}
