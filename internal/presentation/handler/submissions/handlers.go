package submissions

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/AdBoard-Booking/neon-insta-screen/internal/domain"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/events"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/json"
)

const (
	defaultListLimit     = 100
	defaultApprovedLimit = 50
)

type Handler struct {
	repository domain.SubmissionRepository
	publisher  *events.Publisher
}

func NewHandler(repository domain.SubmissionRepository, publisher *events.Publisher) *Handler {
	return &Handler{
		repository: repository,
		publisher:  publisher,
	}
}

// SubmitHandler takes a new selfie submission, stores it pending review, and
// announces the upload. The announcement happens after the write commits and
// never fails the response.
func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	submission, err := domain.NewSubmission(req.Name, req.InstagramHandle, req.WhatsappContact, req.ImageURL, domain.SubmissionSource(req.Source))
	if err != nil {
		json.WriteBadRequestError(w, "name and imageUrl are required")
		return
	}

	if err := h.repository.Create(r.Context(), submission); err != nil {
		log.Printf("failed to store submission from %s: %v", req.Name, err)
		json.WriteInternalError(w, err)
		return
	}

	h.publisher.NewUpload(submission.Name)

	json.Write(w, http.StatusCreated, submitResponse{
		ID:      submission.ID,
		Status:  string(submission.Status),
		Message: "Submission received and pending review",
	})
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	subs, err := h.repository.GetAll(r.Context(), queryLimit(r, defaultListLimit))
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, listResponse{Submissions: subs})
}

// UpdateStatusHandler approves or rejects a submission, then republishes the
// record so every connected display re-fetches the approved list.
func (h *Handler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if req.ID == "" || req.Status == "" {
		json.WriteBadRequestError(w, "id and status are required")
		return
	}

	status := domain.SubmissionStatus(req.Status)
	if status != domain.StatusApproved && status != domain.StatusRejected {
		json.WriteBadRequestError(w, fmt.Sprintf("unsupported status %q", req.Status))
		return
	}

	submission, err := h.repository.GetByID(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSubmissionNotFound) {
			json.WriteNotFoundError(w, "submission not found")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	if status == domain.StatusApproved {
		submission.Approve(req.FramedImageURL, time.Now().UTC())
	} else {
		submission.Reject()
	}

	if err := h.repository.Update(r.Context(), submission); err != nil {
		log.Printf("failed to update submission %s: %v", req.ID, err)
		json.WriteInternalError(w, err)
		return
	}

	if status == domain.StatusApproved {
		h.publisher.Approved(*submission)
	} else {
		h.publisher.Rejected(submission.ID)
	}

	json.Write(w, http.StatusOK, updateStatusResponse{
		Message:    fmt.Sprintf("Submission %s successfully", req.Status),
		Submission: submission,
	})
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		json.WriteBadRequestError(w, "id query parameter is required")
		return
	}

	if err := h.repository.Delete(r.Context(), id); err != nil {
		json.WriteInternalError(w, err)
		return
	}

	h.publisher.Deleted(id)

	json.Write(w, http.StatusOK, updateStatusResponse{Message: "Submission deleted successfully"})
}

// ApprovedHandler serves the authoritative billboard list. Displays call it
// on load and again whenever a billboard_update event arrives.
func (h *Handler) ApprovedHandler(w http.ResponseWriter, r *http.Request) {
	subs, err := h.repository.GetApproved(r.Context(), queryLimit(r, defaultApprovedLimit))
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, listResponse{Submissions: subs})
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
