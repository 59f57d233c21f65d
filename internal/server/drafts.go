package server

import (
	"sync"

	"github.com/yuanying/linkpub/internal/article"
)

// drafts holds one in-memory collection per user while it is being
// assembled. Drafts do not survive a restart.
type drafts struct {
	mu     sync.Mutex
	byUser map[string]*article.Collection
}

func newDrafts() *drafts {
	return &drafts{byUser: make(map[string]*article.Collection)}
}

func copyCollection(c *article.Collection) article.Collection {
	if c == nil {
		return article.Collection{}
	}
	out := *c
	out.Articles = append([]article.Article(nil), c.Articles...)
	return out
}

// get returns a copy of user's draft.
func (d *drafts) get(user string) article.Collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyCollection(d.byUser[user])
}

// update applies fn to user's draft under the lock and returns a copy of the
// result. A failing fn leaves the draft unchanged.
func (d *drafts) update(user string, fn func(*article.Collection) error) (article.Collection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	working := copyCollection(d.byUser[user])
	if err := fn(&working); err != nil {
		return copyCollection(d.byUser[user]), err
	}
	d.byUser[user] = &working
	return copyCollection(&working), nil
}

func (d *drafts) clear(user string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.byUser, user)
}
