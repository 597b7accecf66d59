package stream

// ListOptions provides paging for listing entries, newest first.
type ListOptions struct {
	Limit int
}
