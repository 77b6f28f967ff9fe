package player

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNoLoadedItem is returned by operations that need a loaded item.
	ErrNoLoadedItem = errors.New("no loaded item")
	// ErrEngineFailure matches every *EngineError.
	ErrEngineFailure = errors.New("engine failure")
)

// EngineError wraps an error reported by the media engine.
type EngineError struct {
	// BeforeReady is true when the load failed before the engine reported
	// the item playable.
	BeforeReady bool
	Err         error
}

func (e *EngineError) Error() string {
	if e.Err == nil {
		return ErrEngineFailure.Error()
	}
	return fmt.Sprintf("%s: %v", ErrEngineFailure.Error(), e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrEngineFailure) hold.
func (e *EngineError) Is(target error) bool {
	return target == ErrEngineFailure
}
