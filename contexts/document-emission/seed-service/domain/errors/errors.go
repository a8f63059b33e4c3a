package errors

import "errors"

var (
	ErrInvalidParentReference = errors.New("content declaration requires a remittance document id")
	ErrInvalidSeedRequest     = errors.New("invalid seed request")
	ErrInvalidIdentifier      = errors.New("entity identifier is required")

	ErrPersistFailed  = errors.New("record persist failed")
	ErrStoreThrottled = errors.New("record store throttled the write")
	ErrStoreConflict  = errors.New("record store rejected a conflicting write")

	ErrPublishFailed  = errors.New("message publish failed")
	ErrQueueThrottled = errors.New("queue throttled the send")

	ErrQueueResolution = errors.New("queue resolution failed")

	ErrRunNotFound = errors.New("no seed run recorded yet")
)

// ErrorKind groups failures by where they stop the pipeline.
type ErrorKind string

const (
	KindPrecondition ErrorKind = "precondition"
	KindPersist      ErrorKind = "persist"
	KindPublish      ErrorKind = "publish"
	KindResolution   ErrorKind = "resolution"
	KindUnknown      ErrorKind = "unknown"
)

// Kind classifies err against the pipeline taxonomy. Wrapped transport causes
// are not inspected beyond the sentinel they were wrapped with.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrQueueResolution):
		return KindResolution
	case errors.Is(err, ErrInvalidParentReference),
		errors.Is(err, ErrInvalidSeedRequest),
		errors.Is(err, ErrInvalidIdentifier):
		return KindPrecondition
	case errors.Is(err, ErrPersistFailed),
		errors.Is(err, ErrStoreThrottled),
		errors.Is(err, ErrStoreConflict):
		return KindPersist
	case errors.Is(err, ErrPublishFailed),
		errors.Is(err, ErrQueueThrottled):
		return KindPublish
	default:
		return KindUnknown
	}
}
