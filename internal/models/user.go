package models

import (
	"time"
)

type User struct {
	UID       string    `firestore:"uid" json:"uid"`
	Role      string    `firestore:"role" json:"role"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}
