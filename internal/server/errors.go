package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yuanying/linkpub/internal/article"
	"github.com/yuanying/linkpub/internal/auth"
	"github.com/yuanying/linkpub/internal/bookmarks"
	"github.com/yuanying/linkpub/internal/convert"
	"github.com/yuanying/linkpub/internal/epub"
	"github.com/yuanying/linkpub/internal/extract"
	"github.com/yuanying/linkpub/internal/library"
)

var (
	errBadRequest         = errors.New("bad request")
	errUnauthorized       = errors.New("authentication required")
	errRegistrationClosed = errors.New("registration is disabled")
	errEmptyCollection    = errors.New("collection is empty")
	errNoFeedConfigured   = errors.New("no bookmark feed given")
)

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnauthorized),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, errRegistrationClosed):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, errEmptyCollection),
		errors.Is(err, errNoFeedConfigured),
		errors.Is(err, epub.ErrValidation),
		errors.Is(err, article.ErrDuplicateURL),
		errors.Is(err, article.ErrOutOfRange),
		errors.Is(err, extract.ErrInvalidURL),
		errors.Is(err, convert.ErrNoURLs),
		errors.Is(err, convert.ErrTooManyArticles),
		errors.Is(err, auth.ErrInvalidUsername),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, library.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, epub.ErrEncoding),
		errors.Is(err, extract.ErrTooShort),
		errors.Is(err, extract.ErrUnsupported):
		return http.StatusUnprocessableEntity
	case errors.Is(err, extract.ErrFetch),
		errors.Is(err, extract.ErrDisallowed),
		errors.Is(err, extract.ErrNoArticles),
		errors.Is(err, bookmarks.ErrFeed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, convert.ErrLibraryDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := statusFor(err)
	message := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprint(he.Message)
	}
	if code >= http.StatusInternalServerError && he == nil {
		s.logger.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err)
		if code == http.StatusInternalServerError {
			message = http.StatusText(code)
		}
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, errorResponse{Error: message})
	}
	if werr != nil {
		s.logger.Warn("failed to write error response", "error", werr)
	}
}
