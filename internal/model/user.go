package model

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserStats struct {
	TotalLists       int    `json:"total_lists"`
	TotalItems       int    `json:"total_items"`
	FavoriteCategory string `json:"favorite_category"`
}

// Profile is a user together with their shopping statistics.
type Profile struct {
	User
	Stats UserStats `json:"stats"`
}
