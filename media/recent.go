package media

import (
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultRecentSize = 64

// Recent remembers the last files written, keyed by path.
type Recent struct {
	cache *lru.Cache[string, Entry]
}

func NewRecent(size int) (*Recent, error) {
	if size <= 0 {
		size = DefaultRecentSize
	}

	cache, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create recent index: %w", err)
	}

	return &Recent{cache: cache}, nil
}

func (r *Recent) Add(entry Entry) error {
	r.cache.Add(entry.Path, entry)
	return nil
}

// List returns remembered entries, newest first.
func (r *Recent) List() []Entry {
	entries := r.cache.Values()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}

func (r *Recent) Len() int {
	return r.cache.Len()
}
