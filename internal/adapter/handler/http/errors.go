package http

import (
	"context"
	"errors"

	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	apperrors "github.com/Brunohvg/bibpay/pkg/errors"
)

// toAppError maps domain failures onto application codes. Anything unknown
// stays INTERNAL so the error handler hides its details.
func toAppError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var validationErr *domainerrors.ValidationError
	if errors.As(err, &validationErr) {
		return apperrors.InvalidArgument(validationErr.Error(), err)
	}

	switch {
	case errors.Is(err, domainerrors.ErrOrderNotFound),
		errors.Is(err, domainerrors.ErrSellerNotFound),
		errors.Is(err, domainerrors.ErrPaymentLinkNotFound):
		return apperrors.NotFound(err.Error(), err)
	case errors.Is(err, domainerrors.ErrActiveLinkExists),
		errors.Is(err, domainerrors.ErrLinkClosed),
		errors.Is(err, domainerrors.ErrOrderNotPending),
		errors.Is(err, domainerrors.ErrSellerHasOrders):
		return apperrors.Conflict(err.Error(), err)
	case errors.Is(err, domainerrors.ErrSellerInactive),
		errors.Is(err, domainerrors.ErrInvalidAmount),
		errors.Is(err, domainerrors.ErrUnknownPaymentStatus),
		errors.Is(err, domainerrors.ErrInvalidSignature):
		return apperrors.InvalidArgument(err.Error(), err)
	case errors.Is(err, domainerrors.ErrLinkNotProduced):
		return apperrors.Unavailable(domainerrors.ErrLinkNotProduced.Error(), err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewAppError(apperrors.ErrTimeout, "request timed out", err)
	}

	return apperrors.Wrap(err, "internal error")
}

func invalidParam(name string) error {
	return apperrors.InvalidArgument("invalid "+name, nil)
}
