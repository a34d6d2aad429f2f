package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AdBoard-Booking/neon-insta-screen/internal/domain"
)

// In-memory submission store. The production deployment keeps submissions in
// an external datastore; this store backs single-process deployments and
// tests, and is the authoritative list clients re-fetch after a refresh
// signal. Oldest submissions are evicted when capacity is exceeded.
type submissionRepository struct {
	submissions map[string]*domain.Submission
	order       []string // insertion order, oldest first
	capacity    uint
	mu          sync.RWMutex
}

func NewSubmissionRepository(capacity uint) domain.SubmissionRepository {
	if capacity == 0 {
		capacity = 500 // sane default
	}
	return &submissionRepository{
		submissions: make(map[string]*domain.Submission),
		capacity:    capacity,
	}
}

func (r *submissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	if submission == nil || submission.Name == "" {
		return domain.ErrInvalidInput
	}

	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *submission
	r.submissions[cpy.ID] = &cpy
	r.order = append(r.order, cpy.ID)

	// Evict oldest if over capacity
	for uint(len(r.order)) > r.capacity {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.submissions, oldest)
	}

	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, exists := r.submissions[id]
	if !exists {
		return nil, domain.ErrSubmissionNotFound
	}

	cpy := *sub
	return &cpy, nil
}

func (r *submissionRepository) GetAll(ctx context.Context, limit int) ([]domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]domain.Submission, 0, len(r.submissions))
	for _, sub := range r.submissions {
		all = append(all, *sub)
	}

	// Newest first
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return truncate(all, limit), nil
}

func (r *submissionRepository) GetApproved(ctx context.Context, limit int) ([]domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	approved := make([]domain.Submission, 0, len(r.submissions))
	for _, sub := range r.submissions {
		if sub.Status == domain.StatusApproved {
			approved = append(approved, *sub)
		}
	}

	// Most recently approved first
	sort.Slice(approved, func(i, j int) bool {
		ti, tj := approved[i].ApprovedAt, approved[j].ApprovedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})

	return truncate(approved, limit), nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *domain.Submission) error {
	if submission == nil || submission.ID == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.submissions[submission.ID]; !exists {
		return domain.ErrSubmissionNotFound
	}

	cpy := *submission
	r.submissions[cpy.ID] = &cpy

	return nil
}

func (r *submissionRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.submissions[id]; !exists {
		return nil // idempotent: already gone
	}

	delete(r.submissions, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

func truncate(subs []domain.Submission, limit int) []domain.Submission {
	if limit > 0 && len(subs) > limit {
		return subs[:limit]
	}
	return subs
}
