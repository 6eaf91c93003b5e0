package errors

import (
	"go.uber.org/zap"
)

// LogError logs err with its application code attached when it has one.
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}

	allFields := make([]zap.Field, 0, len(fields)+2)
	allFields = append(allFields, zap.Error(err))

	var appErr *AppError
	if As(err, &appErr) {
		allFields = append(allFields, zap.String("error_code", appErr.Code()))
	}

	allFields = append(allFields, fields...)

	// Client mistakes are warnings, everything else is an error.
	switch CodeOf(err) {
	case ErrInvalidArgument, ErrNotFound, ErrConflict, ErrFailedPrecondition:
		logger.Warn(msg, allFields...)
	default:
		logger.Error(msg, allFields...)
	}
}
