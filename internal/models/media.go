package models

import "time"

type MediaStatus string

const (
	MediaStatusProcessing MediaStatus = "processing"
	MediaStatusReady      MediaStatus = "ready"
)

type Media struct {
	ID        string      `json:"id"`
	OwnerID   int64       `json:"ownerId"`
	Bucket    string      `json:"-"`
	ObjectKey string      `json:"-"`
	Format    string      `json:"format"`
	SizeBytes int64       `json:"sizeBytes"`
	Status    MediaStatus `json:"status"`
	Signature []byte      `json:"-"`
	URL       string      `json:"url"`
	CreatedAt time.Time   `json:"createdAt"`
}
