package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yuanying/linkpub/internal/convert"
	"github.com/yuanying/linkpub/internal/epub"
	"github.com/yuanying/linkpub/internal/extract"
	"github.com/yuanying/linkpub/internal/library"
)

type convertRequest struct {
	URL         string   `json:"url"`
	URLs        []string `json:"urls"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Variant     string   `json:"variant"`
	Save        bool     `json:"save"`
}

type failureView struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

type savedResponse struct {
	Book     library.Entry `json:"book"`
	Failures []failureView `json:"failures,omitempty"`
}

func failureViews(failures []extract.Failure) []failureView {
	out := make([]failureView, len(failures))
	for i, f := range failures {
		out[i] = failureView{URL: f.URL, Error: f.Err.Error()}
	}
	return out
}

func (s *Server) variant(name string) (epub.Variant, error) {
	if strings.TrimSpace(name) == "" {
		return s.opts.DefaultVariant, nil
	}
	return epub.ParseVariant(name)
}

func (s *Server) convert(c echo.Context) error {
	var req convertRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	urls := req.URLs
	if strings.TrimSpace(req.URL) != "" {
		urls = append([]string{req.URL}, urls...)
	}
	variant, err := s.variant(req.Variant)
	if err != nil {
		return err
	}

	res, err := s.pipeline.Convert(c.Request().Context(), urls, convert.Options{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Variant:     variant,
	})
	if err != nil {
		return err
	}
	return s.deliver(c, res, req.Save)
}

// deliver either stores the book and answers with its library entry or
// streams the EPUB as an attachment.
func (s *Server) deliver(c echo.Context, res *convert.Result, save bool) error {
	if save {
		entry, err := s.pipeline.Save(currentUser(c), res)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, savedResponse{Book: entry, Failures: failureViews(res.Failures)})
	}
	if len(res.Failures) > 0 {
		c.Response().Header().Set("X-LinkPub-Skipped", fmt.Sprint(len(res.Failures)))
	}
	return sendEPUB(c, res.Filename(), res.Data)
}

func sendEPUB(c echo.Context, filename string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, epub.Mimetype, data)
}
