package models

import "time"

type Story struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"authorId"`
	User      *User     `json:"user,omitempty"`
	MediaURL  string    `json:"mediaUrl"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChatMessage struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	JobID      int64     `json:"jobId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Review struct {
	ID         int64     `json:"id"`
	JobID      int64     `json:"jobId"`
	ProviderID int64     `json:"providerId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	PhotoURL   *string   `json:"photoUrl"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ProviderLocation struct {
	UserID         int64     `json:"userId"`
	Provider       *User     `json:"provider,omitempty"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	DistanceMeters float64   `json:"distanceMeters"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
