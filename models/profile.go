package models

import "time"

// Profile mirrors the provider-owned `profiles` table. The row shares its ID
// with the auth user. OutlawID is the public login handle used in place of
// email; uniqueness is enforced by the provider's unique index.
type Profile struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Email     string    `json:"email" gorm:"unique;not null"`
	Name      string    `json:"name"`
	Mobile    *string   `json:"mobile"`
	OutlawID  string    `json:"outlaw_id" gorm:"column:outlaw_id;unique;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
