package events

import "fmt"

// Fixed set of upload banner messages. Displays show these verbatim.
var uploadMessages = []string{
	"%s just uploaded a selfie 👀",
	"%s just joined the party! 🔥",
	"%s just shared their story! ✨",
}

// PickUploadMessage formats one of the fixed banner messages for name.
// The pick func supplies the variant index so callers control randomness.
func PickUploadMessage(name string, pick func(n int) int) string {
	i := pick(len(uploadMessages))
	if i < 0 || i >= len(uploadMessages) {
		i = 0
	}
	return fmt.Sprintf(uploadMessages[i], name)
}
