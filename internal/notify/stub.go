//go:build !linux

package notify

// New reports ErrUnavailable: desktop notifications need a freedesktop
// notification daemon.
func New() (Notifier, error) {
	return nil, ErrUnavailable
}
