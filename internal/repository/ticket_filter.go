package repository

// TicketFilter is the coarse server-side filter for List. Empty or "all"
// fields are skipped. ViewerID drives the per-user isUpvoted flag.
type TicketFilter struct {
	Search   string
	Status   string
	Category string
	Creator  string // restrict to tickets created by this user
	ViewerID string
	Sort     string // recent|oldest|commented|upvoted
	Limit    int
	Offset   int
}
