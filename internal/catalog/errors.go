package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownSource is matched by every *UnknownSourceError via errors.Is.
var ErrUnknownSource = errors.New("unknown source")

// UnknownSourceError reports a source id that is not registered in the catalog.
type UnknownSourceError struct {
	ID SourceID
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown source %q", string(e.ID))
}

// Is makes errors.Is(err, ErrUnknownSource) succeed.
func (e *UnknownSourceError) Is(target error) bool {
	return target == ErrUnknownSource
}
