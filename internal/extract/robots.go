package extract

import (
	"context"
	"io"
	"net/http"
	"net/url"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"
)

const (
	robotsAgent     = "LinkPub"
	robotsCacheSize = 256
	maxRobotsBytes  = 512 << 10
)

// robotsCache keeps parsed robots.txt files for recently seen origins.
// Concurrent misses for one origin share a single download.
type robotsCache struct {
	hosts *lru.Cache[string, *robotstxt.RobotsData]
	group singleflight.Group
}

func newRobotsCache() *robotsCache {
	// lru.New only fails for a non-positive size
	hosts, _ := lru.New[string, *robotstxt.RobotsData](robotsCacheSize)
	return &robotsCache{hosts: hosts}
}

// allowed reports whether u may be fetched. A robots.txt that cannot be
// retrieved allows everything.
func (c *robotsCache) allowed(ctx context.Context, f *Fetcher, u *url.URL) (bool, error) {
	key := u.Scheme + "://" + u.Host

	data, ok := c.hosts.Get(key)
	if !ok {
		v, err, _ := c.group.Do(key, func() (any, error) {
			if cached, ok := c.hosts.Get(key); ok {
				return cached, nil
			}
			fetched, err := fetchRobots(ctx, f, key)
			if err != nil {
				return nil, err
			}
			c.hosts.Add(key, fetched)
			return fetched, nil
		})
		if err != nil {
			return true, err
		}
		data = v.(*robotstxt.RobotsData)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, robotsAgent), nil
}

func fetchRobots(ctx context.Context, f *Fetcher, origin string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgents[0])
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return nil, err
	}
	return robotstxt.FromStatusAndBytes(resp.StatusCode, body)
}
