package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yuanying/linkpub/internal/article"
	"github.com/yuanying/linkpub/internal/convert"
)

type articleView struct {
	Index     int    `json:"index"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	SiteName  string `json:"siteName"`
	Excerpt   string `json:"excerpt,omitempty"`
	WordCount int    `json:"wordCount"`
}

type collectionView struct {
	Count      int           `json:"count"`
	TotalWords int           `json:"totalWords"`
	Articles   []articleView `json:"articles"`
}

func viewOf(c article.Collection) collectionView {
	v := collectionView{
		Count:      c.Len(),
		TotalWords: c.TotalWords(),
		Articles:   make([]articleView, c.Len()),
	}
	for i, a := range c.Articles {
		v.Articles[i] = articleView{
			Index:     i,
			Title:     a.ResolvedTitle(),
			URL:       a.URL,
			SiteName:  a.ResolvedSiteName(),
			Excerpt:   a.Excerpt,
			WordCount: a.WordCount,
		}
	}
	return v
}

func (s *Server) getCollection(c echo.Context) error {
	return c.JSON(http.StatusOK, viewOf(s.drafts.get(currentUser(c))))
}

func (s *Server) addArticle(c echo.Context) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return badRequest("url is required")
	}

	user := currentUser(c)
	current := s.drafts.get(user)
	if current.Contains(rawURL) {
		return article.ErrDuplicateURL
	}
	if err := s.pipeline.CheckCount(current.Len() + 1); err != nil {
		return err
	}

	a, err := s.pipeline.Extractor().Extract(c.Request().Context(), rawURL)
	if err != nil {
		return err
	}

	// re-checked under the lock since extraction ran unlocked
	updated, err := s.drafts.update(user, func(col *article.Collection) error {
		if err := s.pipeline.CheckCount(col.Len() + 1); err != nil {
			return err
		}
		return col.Add(a)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, viewOf(updated))
}

func (s *Server) removeArticle(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return badRequest("index must be an integer")
	}
	updated, err := s.drafts.update(currentUser(c), func(col *article.Collection) error {
		_, err := col.Remove(index)
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, viewOf(updated))
}

func (s *Server) reorderArticles(c echo.Context) error {
	var req struct {
		From *int `json:"from"`
		To   *int `json:"to"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if req.From == nil || req.To == nil {
		return badRequest("from and to are required")
	}
	updated, err := s.drafts.update(currentUser(c), func(col *article.Collection) error {
		return col.Move(*req.From, *req.To)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, viewOf(updated))
}

func (s *Server) clearCollection(c echo.Context) error {
	s.drafts.clear(currentUser(c))
	return c.NoContent(http.StatusNoContent)
}

type buildRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
	Save        bool   `json:"save"`
}

func (s *Server) buildCollection(c echo.Context) error {
	var req buildRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	variant, err := s.variant(req.Variant)
	if err != nil {
		return err
	}

	draft := s.drafts.get(currentUser(c))
	if draft.Len() == 0 {
		return errEmptyCollection
	}
	res, err := s.pipeline.Build(c.Request().Context(), draft, convert.Options{
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
