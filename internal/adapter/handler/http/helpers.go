package http

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/Brunohvg/bibpay/pkg/errors"
)

const dateLayout = "2006-01-02"

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.InvalidArgument("invalid request body", err)
	}
	if err := c.Validate(req); err != nil {
		return apperrors.InvalidArgument(err.Error(), err)
	}
	return nil
}

func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidParam(name)
	}
	return id, nil
}

// parseDate reads a YYYY-MM-DD query value as midnight UTC. Empty means unset.
func parseDate(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, invalidParam(name)
	}
	return &t, nil
}
