package errors

// Application error codes shared by the HTTP and gRPC layers.
const (
	ErrInternal           = "INTERNAL"
	ErrNotFound           = "NOT_FOUND"
	ErrInvalidArgument    = "INVALID_ARGUMENT"
	ErrUnauthenticated    = "UNAUTHENTICATED"
	ErrUnauthorized       = "UNAUTHORIZED"
	ErrConflict           = "CONFLICT"
	ErrFailedPrecondition = "FAILED_PRECONDITION"
	ErrTimeout            = "TIMEOUT"
	ErrUnavailable        = "UNAVAILABLE"
	ErrNotImplemented     = "NOT_IMPLEMENTED"
)
