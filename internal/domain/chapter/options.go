package chapter

// ListOptions provides filtering options for listing chapters, newest first.
type ListOptions struct {
	Finished *bool
	Limit    int
}
