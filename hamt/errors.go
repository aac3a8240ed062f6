package hamt

// The package's only error sentinel is ErrUnreachable (declared in
// handle.go, next to the state machine it guards). I/O errors from the backing store surface unchanged, wrapped
// only with github.com/pkg/errors context for the call site that
// triggered them; the package defines no error type of its own for them,
// since the core's error handling design treats "the store failed" as a
// single undifferentiated class the caller cannot usefully recover from
// beyond retrying or aborting.
