package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrSubmissionNotFound = errors.New("submission not found")
)

type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

type SubmissionSource string

const (
	SourceWeb      SubmissionSource = "web"
	SourceWhatsApp SubmissionSource = "whatsapp"
)

type Submission struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	InstagramHandle string           `json:"instagramHandle,omitempty"`
	WhatsappContact string           `json:"whatsappContact,omitempty"`
	ImageURL        string           `json:"imageUrl"`
	FramedImageURL  string           `json:"framedImageUrl,omitempty"`
	Status          SubmissionStatus `json:"status"`
	Source          SubmissionSource `json:"source"`
	CreatedAt       time.Time        `json:"createdAt"`
	ApprovedAt      *time.Time       `json:"approvedAt,omitempty"`
}

func NewSubmission(name, instagramHandle, whatsappContact, imageURL string, source SubmissionSource) (*Submission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	if imageURL == "" {
		return nil, ErrInvalidInput
	}
	if source != SourceWeb && source != SourceWhatsApp {
		source = SourceWeb
	}

	return &Submission{
		Name:            name,
		InstagramHandle: strings.TrimPrefix(strings.TrimSpace(instagramHandle), "@"),
		WhatsappContact: strings.TrimSpace(whatsappContact),
		ImageURL:        imageURL,
		Status:          StatusPending,
		Source:          source,
	}, nil
}

// Approve marks the submission approved and stamps the approval time.
// An optional framed URL replaces the raw image on the billboard.
func (s *Submission) Approve(framedImageURL string, at time.Time) {
	s.Status = StatusApproved
	s.ApprovedAt = &at
	if framedImageURL != "" {
		s.FramedImageURL = framedImageURL
	}
}

// Reject clears any prior approval so a previously approved submission
// drops off the billboard on the next fetch.
func (s *Submission) Reject() {
	s.Status = StatusRejected
	s.ApprovedAt = nil
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *Submission) error
	GetByID(ctx context.Context, id string) (*Submission, error)
	GetAll(ctx context.Context, limit int) ([]Submission, error)
	GetApproved(ctx context.Context, limit int) ([]Submission, error)
	Update(ctx context.Context, submission *Submission) error
	Delete(ctx context.Context, id string) error
}
