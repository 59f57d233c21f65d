package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/yuanying/linkpub/internal/article"
	"github.com/yuanying/linkpub/internal/auth"
	"github.com/yuanying/linkpub/internal/bookmarks"
	"github.com/yuanying/linkpub/internal/convert"
	"github.com/yuanying/linkpub/internal/epub"
	"github.com/yuanying/linkpub/internal/extract"
	"github.com/yuanying/linkpub/internal/library"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", fmt.Errorf("verify: %w", auth.ErrInvalidToken), http.StatusUnauthorized},
		{"bad credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"registration closed", errRegistrationClosed, http.StatusForbidden},
		{"user exists", auth.ErrUserExists, http.StatusConflict},
		{"missing book", library.ErrNotFound, http.StatusNotFound},
		{"empty collection", &epub.ValidationError{}, http.StatusBadRequest},
		{"duplicate", article.ErrDuplicateURL, http.StatusBadRequest},
		{"bad index", article.ErrOutOfRange, http.StatusBadRequest},
		{"too many", convert.ErrTooManyArticles, http.StatusBadRequest},
		{"weak password", auth.ErrWeakPassword, http.StatusBadRequest},
		{"encoding", &epub.EncodingError{Field: "title", Err: errors.New("bad")}, http.StatusUnprocessableEntity},
		{"too short", extract.ErrTooShort, http.StatusUnprocessableEntity},
		{"fetch", fmt.Errorf("%w: 404", extract.ErrFetch), http.StatusBadGateway},
		{"robots", extract.ErrDisallowed, http.StatusBadGateway},
		{"feed", bookmarks.ErrFeed, http.StatusBadGateway},
		{"single invalid url", fmt.Errorf("%w: %w", extract.ErrNoArticles, extract.ErrInvalidURL), http.StatusBadRequest},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"library off", convert.ErrLibraryDisabled, http.StatusServiceUnavailable},
		{"packaging", &epub.PackagingError{Err: errors.New("disk")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestDrafts_FailedUpdateLeavesDraftUnchanged(t *testing.T) {
	d := newDrafts()
	a := article.Article{Title: "One", URL: "https://example.com/1", Content: "<p>x</p>"}
	if _, err := d.update("alice", func(c *article.Collection) error { return c.Add(a) }); err != nil {
		t.Fatalf("update() error = %v", err)
	}

	got, err := d.update("alice", func(c *article.Collection) error {
		c.Title = "changed"
		return c.Add(a)
	})
	if !errors.Is(err, article.ErrDuplicateURL) {
		t.Fatalf("update() error = %v, want ErrDuplicateURL", err)
	}
	if got.Title != "" || got.Len() != 1 {
		t.Errorf("draft after failed update = %+v", got)
	}

	// copies returned by get must not alias the stored draft
	snapshot := d.get("alice")
	snapshot.Articles[0].Title = "mutated"
	if d.get("alice").Articles[0].Title != "One" {
		t.Error("get() returned an aliased collection")
	}

	if d.get("bob").Len() != 0 {
		t.Error("drafts leaked between users")
	}
	d.clear("alice")
	if d.get("alice").Len() != 0 {
		t.Error("clear() left articles behind")
	}
}
