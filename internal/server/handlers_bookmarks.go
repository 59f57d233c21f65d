package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (s *Server) listBookmarks(c echo.Context) error {
	feed := strings.TrimSpace(c.QueryParam("feed"))
	if feed == "" {
		feed = s.opts.DefaultFeedURL
	}
	if feed == "" || s.bookmarks == nil {
		return errNoFeedConfigured
	}
	items, err := s.bookmarks.List(c.Request().Context(), feed)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"bookmarks": items})
}
