package envelope

// Limits constrains envelope sizes accepted from outside the process.
type Limits struct {
	MaxEnvelopeBytes int
}

func DefaultLimits() Limits {
	return Limits{MaxEnvelopeBytes: 8 * 1024 * 1024}
}

// Check reports ErrTooLarge when n exceeds the limit. A zero limit disables the
// check.
func (l Limits) Check(n int) error {
	if l.MaxEnvelopeBytes > 0 && n > l.MaxEnvelopeBytes {
		return ErrTooLarge
	}
	return nil
}
