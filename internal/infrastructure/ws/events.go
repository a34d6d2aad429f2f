package ws

// Wire-level event names. Browser clients match on these exactly, so they
// never change without coordinating a display rollout.
const (
	NewUploadEvent       = "new_upload"
	ApprovedPostEvent    = "approved_post"
	RejectedPostEvent    = "rejected_post"
	BillboardUpdateEvent = "billboard_update"
)

// Client-to-server control messages.
const (
	JoinRoomControl  = "join_room"
	LeaveRoomControl = "leave_room"
)

// DefaultRoom is joined by every connection on handshake. Displays that want
// a dedicated feed can join additional rooms via join_room.
const DefaultRoom = "billboard"
