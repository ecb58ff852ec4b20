package models

import "time"

// ApplicationStatus is the review state of a provider application.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationNeedsInfo ApplicationStatus = "needs_info"
)

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected, ApplicationNeedsInfo:
		return true
	}
	return false
}

// DocumentKind classifies an uploaded onboarding document.
type DocumentKind string

const (
	DocumentID            DocumentKind = "id"
	DocumentCertification DocumentKind = "certification"
	DocumentInsurance     DocumentKind = "insurance"
	DocumentOther         DocumentKind = "other"
)

// Valid reports whether k is a known document kind.
func (k DocumentKind) Valid() bool {
	switch k {
	case DocumentID, DocumentCertification, DocumentInsurance, DocumentOther:
		return true
	}
	return false
}

// DocumentRef points at an uploaded document in the blob store.
type DocumentRef struct {
	Kind        DocumentKind `bson:"kind" json:"kind" firestore:"kind"`
	Path        string       `bson:"path" json:"path" firestore:"path"`
	FileName    string       `bson:"fileName" json:"fileName" firestore:"fileName"`
	ContentType string       `bson:"contentType" json:"contentType" firestore:"contentType"`
	Size        int64        `bson:"size" json:"size" firestore:"size"`
	UploadedAt  time.Time    `bson:"uploadedAt" json:"uploadedAt" firestore:"uploadedAt"`
	DownloadURL string       `bson:"-" json:"downloadUrl,omitempty" firestore:"-"`
}

// ProviderApplication is a provider's onboarding submission. Its ID is the provider's identity id.
type ProviderApplication struct {
	ID              string            `bson:"id" json:"id" firestore:"id"`
	DisplayName     string            `bson:"displayName" json:"displayName" firestore:"displayName"`
	Email           string            `bson:"email" json:"email" firestore:"email"`
	Phone           string            `bson:"phone" json:"phone" firestore:"phone"`
	Services        []string          `bson:"services" json:"services" firestore:"services"`
	Bio             string            `bson:"bio" json:"bio" firestore:"bio"`
	ExperienceYears int               `bson:"experienceYears" json:"experienceYears" firestore:"experienceYears"`
	ServiceArea     string            `bson:"serviceArea" json:"serviceArea" firestore:"serviceArea"`
	Documents       []DocumentRef     `bson:"documents" json:"documents" firestore:"documents"`
	Status          ApplicationStatus `bson:"status" json:"status" firestore:"status"`
	ReviewerNotes   string            `bson:"reviewerNotes,omitempty" json:"reviewerNotes,omitempty" firestore:"reviewerNotes,omitempty"`
	ReviewedBy      string            `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty" firestore:"reviewedBy,omitempty"`
	SubmittedAt     time.Time         `bson:"submittedAt" json:"submittedAt" firestore:"submittedAt"`
	UpdatedAt       time.Time         `bson:"updatedAt" json:"updatedAt" firestore:"updatedAt"`
	ReviewedAt      *time.Time        `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty" firestore:"reviewedAt,omitempty"`
}

// ApplicationInput is the provider-supplied part of an application.
type ApplicationInput struct {
	DisplayName     string   `json:"displayName" binding:"required"`
	Phone           string   `json:"phone" binding:"required"`
	Services        []string `json:"services" binding:"required,min=1"`
	Bio             string   `json:"bio"`
	ExperienceYears int      `json:"experienceYears" binding:"gte=0"`
	ServiceArea     string   `json:"serviceArea" binding:"required"`
}

// ApplicationReview records an admin decision.
type ApplicationReview struct {
	Status     ApplicationStatus
	Notes      string
	ReviewedBy string
	ReviewedAt time.Time
}
