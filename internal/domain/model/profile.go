package model

import "time"

type Profile struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Gender      string    `json:"gender"`
	City        string    `json:"city"`
	Description string    `json:"description"`
	Photos      []string  `json:"photos"`
	Visible     bool      `json:"visible"`
	CreatedAt   time.Time `json:"created_at"`
}
