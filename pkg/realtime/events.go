package realtime

// Event names mirrored from the server's catalog. Consumers must ignore
// kinds they don't recognize.
const (
	NewUploadEvent       = "new_upload"
	ApprovedPostEvent    = "approved_post"
	RejectedPostEvent    = "rejected_post"
	BillboardUpdateEvent = "billboard_update"
)

const (
	joinRoomControl  = "join_room"
	leaveRoomControl = "leave_room"
)

// DefaultRoom is joined server-side on handshake; no explicit join_room is
// needed for the primary billboard display.
const DefaultRoom = "billboard"
