package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/domain"
	"github.com/cbsr/biobank/internal/server/services"
)

type response struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, response{Status: common.StatusSuccess, Data: data})
}

// handleError renders err as an error envelope. A stale version is a 400
// whose message clients recognise as a conflict.
func (h *Handler) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, msg := statusOf(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, response{Status: common.StatusError, Message: msg})
	}
	if werr != nil {
		h.logger.Warn(c.Request().Context(), "cannot write error response", "error", werr)
	}
}

func statusOf(err error) (int, string) {
	var (
		vc *services.VersionConflictError
		de *domain.DomainError
		ve *domain.ValidationError
		he *echo.HTTPError
	)
	switch {
	case errors.As(err, &vc):
		return http.StatusBadRequest, vc.Error()
	case errors.As(err, &de):
		return http.StatusBadRequest, de.Message
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.As(err, &he):
		return he.Code, fmt.Sprint(he.Message)
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, common.ErrInternal.Error()
}

// change is embedded by every change request body. The pointer tells an
// absent expectedVersion apart from version 0.
type change struct {
	ExpectedVersion *int64 `json:"expectedVersion"`
}

func (ch *change) expectedVersion() *int64 { return ch.ExpectedVersion }

type changeRequest interface {
	expectedVersion() *int64
}

// bindChange binds req and returns the version the change was made against.
func bindChange(c echo.Context, req changeRequest) (int64, error) {
	if err := c.Bind(req); err != nil {
		return 0, err
	}
	v := req.expectedVersion()
	if v == nil {
		return 0, domain.NewDomainError("expectedVersion is required")
	}
	return *v, nil
}

// versionParam is the expected version carried in a DELETE path.
func versionParam(c echo.Context) (int64, error) {
	v, err := strconv.ParseInt(c.Param("version"), 10, 64)
	if err != nil || v < 0 {
		return 0, domain.NewDomainError("invalid version: %s", c.Param("version"))
	}
	return v, nil
}

func listQuery(c echo.Context) (services.ListQuery, error) {
	q := services.ListQuery{
		Filter: c.QueryParam("filter"),
		Status: c.QueryParam("status"),
		Sort:   c.QueryParam("sort"),
		Order:  c.QueryParam("order"),
	}
	var err error
	if q.Page, err = intParam(c, "page"); err != nil {
		return q, err
	}
	if q.PageSize, err = intParam(c, "pageSize"); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(c echo.Context, name string) (int, error) {
	s := c.QueryParam(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, domain.NewDomainError("invalid %s: %s", name, s)
	}
	return n, nil
}

// timeValue parses an optional RFC3339 time.
func timeValue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, domain.NewDomainError("invalid datetime: %s", s)
	}
	return &t, nil
}
