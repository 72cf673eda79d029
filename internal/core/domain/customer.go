package domain

import "time"

type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

type CustomerFilter struct {
	NameContains  string
	EmailContains string
	OrderBy       string
}
