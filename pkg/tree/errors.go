package tree

import "errors"

// Lookup errors
var (
	// ErrNotFound indicates that an id does not resolve to a live node.
	ErrNotFound = errors.New("node not found")

	// ErrNotDirectory indicates that a directory was required.
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotFile indicates that a file was required.
	ErrNotFile = errors.New("not a file")
)

// Validation errors
var (
	// ErrDuplicateName indicates a sibling with the same name and kind exists.
	ErrDuplicateName = errors.New("name already exists in directory")

	// ErrRootImmutable indicates an attempt to delete, rename or move the root.
	ErrRootImmutable = errors.New("root directory cannot be modified")

	// ErrCycle indicates a move into the node itself or one of its descendants.
	ErrCycle = errors.New("cannot move a directory into itself")

	// ErrInvalidName indicates an empty name or one containing a path separator.
	ErrInvalidName = errors.New("invalid name")

	// ErrIDReused indicates an inserted node carries an id this tree has seen.
	ErrIDReused = errors.New("node id already used")

	// ErrInvalidSnapshot indicates a snapshot that violates tree invariants.
	ErrInvalidSnapshot = errors.New("invalid tree snapshot")
)

// IsValidation reports whether err is a validation failure rather than a
// lookup miss.
func IsValidation(err error) bool {
	return errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrRootImmutable) ||
		errors.Is(err, ErrCycle) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrIDReused) ||
		errors.Is(err, ErrInvalidSnapshot) ||
		errors.Is(err, ErrNotDirectory) ||
		errors.Is(err, ErrNotFile)
}
