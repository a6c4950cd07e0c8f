package domain

import (
	"errors"
	"fmt"
)

// ValidationError marks bad or ambiguous user input. It is surfaced to the
// user verbatim with exit code 2 and never wraps a collaborator failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an explicitly named path that does not exist.
type NotFoundError struct {
	Path string
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.What, e.Path)
}

// AmbiguousDiscoveryError reports source discovery that found zero or more
// than one candidate where exactly one is required.
type AmbiguousDiscoveryError struct {
	Dir     string
	Matches int
}

func (e *AmbiguousDiscoveryError) Error() string {
	if e.Matches == 0 {
		return fmt.Sprintf("no composition source found in %s", e.Dir)
	}
	return fmt.Sprintf("%d composition sources found in %s; pass one explicitly", e.Matches, e.Dir)
}

// MissingArtifactError reports a generated artifact required for rendering
// that is absent on disk.
type MissingArtifactError struct {
	Path string
	Kind string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("missing %s artifact: %s", e.Kind, e.Path)
}

// IsUserError reports whether err belongs to the validation class: input
// problems the user can fix, printed without diagnostic detail.
func IsUserError(err error) bool {
	var ve *ValidationError
	var nf *NotFoundError
	var ad *AmbiguousDiscoveryError
	var ma *MissingArtifactError
	return errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ad) || errors.As(err, &ma)
}
