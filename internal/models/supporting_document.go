package models

import "time"

// SupportingDocument: a file attached to a claim as evidence. StoredName is the
// generated on-disk name, never the user-supplied one.
type SupportingDocument struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClaimID    uint      `gorm:"index;not null" json:"claim_id"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	StoredName string    `gorm:"size:100;uniqueIndex;not null" json:"-"`
	FileSize   int64     `gorm:"not null" json:"file_size"`
	UploadDate time.Time `gorm:"not null" json:"upload_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
