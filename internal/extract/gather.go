package extract

import (
	"context"
	"fmt"

	"github.com/yuanying/linkpub/internal/article"
)

// Gather extracts each URL in order into a new collection. URLs that fail or
// repeat an earlier URL are reported as failures and skipped. An error is
// returned only when the context is cancelled or nothing could be extracted.
func (e *Extractor) Gather(ctx context.Context, urls []string) (*article.Collection, []Failure, error) {
	c := &article.Collection{}
	var failures []Failure

	for _, rawURL := range urls {
		if err := ctx.Err(); err != nil {
			return c, failures, err
		}
		if c.Contains(rawURL) {
			failures = append(failures, Failure{URL: rawURL, Err: article.ErrDuplicateURL})
			continue
		}

		a, err := e.Extract(ctx, rawURL)
		if err != nil {
			if ctx.Err() != nil {
				return c, failures, ctx.Err()
			}
			e.logger.Warn("skipping article", "url", rawURL, "error", err)
			failures = append(failures, Failure{URL: rawURL, Err: err})
			continue
		}
		if err := c.Add(a); err != nil {
			failures = append(failures, Failure{URL: rawURL, Err: err})
		}
	}

	if c.Len() == 0 {
		if len(failures) == 1 {
			return c, failures, fmt.Errorf("%w: %w", ErrNoArticles, failures[0])
		}
		return c, failures, fmt.Errorf("%w: %d of %d failed", ErrNoArticles, len(failures), len(urls))
	}
	return c, failures, nil
}
