package models

import (
	"time"
)

// User is a member of the pool roster
type User struct {
	ID        int       `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
