package main

import (
	"log/slog"
	"net/http"

	"github.com/yuanying/linkpub/internal/config"
	"github.com/yuanying/linkpub/internal/convert"
	"github.com/yuanying/linkpub/internal/coverart"
	"github.com/yuanying/linkpub/internal/extract"
	"github.com/yuanying/linkpub/internal/library"
)

func newFetcher(cfg *config.Config, logger *slog.Logger) *extract.Fetcher {
	return extract.NewFetcher(extract.FetcherOptions{
		Timeout:       cfg.FetchTimeout(),
		Delay:         cfg.FetchDelay(),
		UserAgents:    cfg.Fetch.UserAgents,
		MaxBodyBytes:  cfg.Fetch.MaxBodyBytes,
		RespectRobots: cfg.Fetch.RespectRobots,
		Logger:        logger,
	})
}

// newPipeline wires the conversion pipeline. The library is only attached
// when withLibrary is set; the data directory must then exist.
func newPipeline(cfg *config.Config, logger *slog.Logger, withLibrary bool) (*convert.Pipeline, error) {
	var store *library.Store
	if withLibrary {
		var err error
		store, err = library.NewStore(cfg.LibraryDir(), logger)
		if err != nil {
			return nil, err
		}
	}
	extractor := extract.NewExtractor(newFetcher(cfg, logger), cfg.Fetch.MinContentLength, logger)
	return convert.NewPipeline(convert.Config{
		Extractor:     extractor,
		Covers:        coverart.NewOptimizer(cfg.EPUB.CoverMaxWidth, cfg.EPUB.CoverJPEGQuality),
		Library:       store,
		DefaultAuthor: cfg.EPUB.DefaultAuthor,
		MaxArticles:   cfg.Fetch.MaxArticles,
		Logger:        logger,
	}), nil
}

func feedClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.FetchTimeout()}
}
