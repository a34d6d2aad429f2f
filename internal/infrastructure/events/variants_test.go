package events

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickUploadMessage(t *testing.T) {
	tests := []struct {
		name string
		pick func(n int) int
		want string
	}{
		{
			name: "first variant",
			pick: func(int) int { return 0 },
			want: "Maya just uploaded a selfie 👀",
		},
		{
			name: "second variant",
			pick: func(int) int { return 1 },
			want: "Maya just joined the party! 🔥",
		},
		{
			name: "third variant",
			pick: func(int) int { return 2 },
			want: "Maya just shared their story! ✨",
		},
		{
			name: "out of range falls back to first",
			pick: func(int) int { return 99 },
			want: "Maya just uploaded a selfie 👀",
		},
		{
			name: "negative falls back to first",
			pick: func(int) int { return -1 },
			want: "Maya just uploaded a selfie 👀",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PickUploadMessage("Maya", tt.pick)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPickUploadMessage_AlwaysContainsName(t *testing.T) {
	for i := range uploadMessages {
		got := PickUploadMessage("Ana", func(int) int { return i })
		assert.True(t, strings.Contains(got, "Ana"), "variant %d: %q", i, got)
	}
}
