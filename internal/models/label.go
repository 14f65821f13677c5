package models

import "time"

type Label struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
