package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubmission(t *testing.T) {
	sub, err := NewSubmission("  Maya ", "@maya.selfies", " +15550100 ", "https://cdn.example.com/a.jpg", SourceWeb)
	require.NoError(t, err)

	assert.Equal(t, "Maya", sub.Name)
	assert.Equal(t, "maya.selfies", sub.InstagramHandle)
	assert.Equal(t, "+15550100", sub.WhatsappContact)
	assert.Equal(t, StatusPending, sub.Status)
	assert.Equal(t, SourceWeb, sub.Source)
}

func TestNewSubmission_Invalid(t *testing.T) {
	_, err := NewSubmission("", "", "", "https://cdn.example.com/a.jpg", SourceWeb)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewSubmission("   ", "", "", "https://cdn.example.com/a.jpg", SourceWeb)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewSubmission("Maya", "", "", "", SourceWeb)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewSubmission_UnknownSourceDefaultsToWeb(t *testing.T) {
	sub, err := NewSubmission("Maya", "", "", "https://cdn.example.com/a.jpg", SubmissionSource("carrier-pigeon"))
	require.NoError(t, err)
	assert.Equal(t, SourceWeb, sub.Source)
}

func TestSubmission_ApproveAndReject(t *testing.T) {
	sub, err := NewSubmission("Maya", "", "", "https://cdn.example.com/a.jpg", SourceWhatsApp)
	require.NoError(t, err)

	at := time.Now().UTC()
	sub.Approve("https://cdn.example.com/framed.jpg", at)
	assert.Equal(t, StatusApproved, sub.Status)
	require.NotNil(t, sub.ApprovedAt)
	assert.Equal(t, at, *sub.ApprovedAt)
	assert.Equal(t, "https://cdn.example.com/framed.jpg", sub.FramedImageURL)

	// Approving without a framed URL keeps the previous one.
	sub.Approve("", at.Add(time.Minute))
	assert.Equal(t, "https://cdn.example.com/framed.jpg", sub.FramedImageURL)

	sub.Reject()
	assert.Equal(t, StatusRejected, sub.Status)
	assert.Nil(t, sub.ApprovedAt)
}
