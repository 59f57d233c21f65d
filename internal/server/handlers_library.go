package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yuanying/linkpub/internal/convert"
	"github.com/yuanying/linkpub/internal/library"
)

func (s *Server) library() (*library.Store, error) {
	store := s.pipeline.Library()
	if store == nil {
		return nil, convert.ErrLibraryDisabled
	}
	return store, nil
}

func (s *Server) listLibrary(c echo.Context) error {
	store, err := s.library()
	if err != nil {
		return err
	}
	entries, err := store.List(currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"books": entries})
}

func (s *Server) downloadBook(c echo.Context) error {
	store, err := s.library()
	if err != nil {
		return err
	}
	entry, data, err := store.Open(currentUser(c), c.Param("filename"))
	if err != nil {
		return err
	}
	return sendEPUB(c, entry.Filename, data)
}

func (s *Server) deleteBook(c echo.Context) error {
	store, err := s.library()
	if err != nil {
		return err
	}
	if err := store.Delete(currentUser(c), c.Param("filename")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
