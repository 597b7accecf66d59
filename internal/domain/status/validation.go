package status

// Validate checks the value. Every state is reachable from every other, so
// there is no transition check.
func Validate(s Status) error {
	switch s {
	case StatusSteady, StatusAlone, StatusSync:
		return nil
	default:
		return ErrInvalidStatus
	}
}
