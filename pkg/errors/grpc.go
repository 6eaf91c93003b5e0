package errors

import (
	"google.golang.org/grpc/status"
)

// ToGRPCStatus converts err into a gRPC status error.
func ToGRPCStatus(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		_, code := GetCodeMapping(appErr.Code())
		return status.Error(code, appErr.Message())
	}

	_, code := GetCodeMapping(ErrInternal)
	return status.Error(code, "internal error")
}
