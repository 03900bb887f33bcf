package models

import "time"

// Message is a direct message between two registered users. ReadAt is
// nil until the recipient marks the message read; once set it never
// changes. Self-messages (FromUsername == ToUsername) are permitted.
type Message struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	FromUsername string     `json:"from_username" gorm:"index;not null"`
	ToUsername   string     `json:"to_username" gorm:"index;not null"`
	Body         string     `json:"body" gorm:"type:text;not null"`
	SentAt       time.Time  `json:"sent_at" gorm:"autoCreateTime"`
	ReadAt       *time.Time `json:"read_at"`

	FromUser *User `json:"-" gorm:"foreignKey:FromUsername;references:Username"`
	ToUser   *User `json:"-" gorm:"foreignKey:ToUsername;references:Username"`
}
