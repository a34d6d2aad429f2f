package ws

import (
	"github.com/AdBoard-Booking/neon-insta-screen/internal/domain"
)

type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Payload structs. Field names are part of the wire contract.
type NewUploadPayload struct {
	Name      string `json:"name"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type ApprovedPostPayload struct {
	domain.Submission
	Timestamp int64 `json:"timestamp"`
}

type RejectedPostPayload struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
}

type BillboardUpdatePayload struct {
	ID        string `json:"id"`
	Action    string `json:"action,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func NewUpload(name, message string, timestamp int64) *Message {
	return &Message{
		Event: NewUploadEvent,
		Payload: NewUploadPayload{
			Name:      name,
			Message:   message,
			Timestamp: timestamp,
		},
	}
}

func NewApprovedPost(submission domain.Submission, timestamp int64) *Message {
	return &Message{
		Event: ApprovedPostEvent,
		Payload: ApprovedPostPayload{
			Submission: submission,
			Timestamp:  timestamp,
		},
	}
}

func NewRejectedPost(submissionID string, timestamp int64) *Message {
	return &Message{
		Event: RejectedPostEvent,
		Payload: RejectedPostPayload{
			ID:        submissionID,
			Timestamp: timestamp,
		},
	}
}

func NewBillboardUpdate(submissionID, action string, timestamp int64) *Message {
	return &Message{
		Event: BillboardUpdateEvent,
		Payload: BillboardUpdatePayload{
			ID:        submissionID,
			Action:    action,
			Timestamp: timestamp,
		},
	}
}

// NewBillboardUpdateFromSubmission carries the full record so displays can
// show the approved image without an extra fetch of that one submission.
func NewBillboardUpdateFromSubmission(submission domain.Submission, timestamp int64) *Message {
	return &Message{
		Event: BillboardUpdateEvent,
		Payload: ApprovedPostPayload{
			Submission: submission,
			Timestamp:  timestamp,
		},
	}
}
