package entity

import (
	"time"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// Complaint is the metadata record for a citizen report. The media fields
// stay empty until the deferred attach task completes; the record is valid
// and queryable without them.
type Complaint struct {
	ID          string `json:"id" firestore:"id"`
	UserID      string `json:"user_id" firestore:"userId"`
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
	Category    string `json:"category" firestore:"category"`
	Location    string `json:"location" firestore:"location"`
	Priority    string `json:"priority" firestore:"priority"`
	Status      string `json:"status" firestore:"status"`

	FileURL       string `json:"file_url,omitempty" firestore:"fileURL,omitempty"`
	StoragePath   string `json:"storage_path,omitempty" firestore:"storagePath,omitempty"`
	Preview       string `json:"preview,omitempty" firestore:"preview,omitempty"`
	MediaProvider string `json:"media_provider,omitempty" firestore:"mediaProvider,omitempty"`

	AdminNotes string `json:"admin_notes,omitempty" firestore:"adminNotes,omitempty"`
	AssignedTo string `json:"assigned_to,omitempty" firestore:"assignedTo,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusResolved || s == StatusRejected
}
