package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"
)

const (
	sessionPrefix  = "session:"
	messagesPrefix = "messages:"
	ticketPrefix   = "ticket:"
	documentPrefix = "kbdoc:"
	chunkPrefix    = "kbchunk:"
)

// Store backs every in-memory repository. Items never expire; the process
// lifetime is the retention window.
type Store struct {
	cache *cache.Cache
	mu    sync.Mutex
}

func NewStore() *Store {
	return &Store{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *Store) get(key string) (any, bool) {
	return s.cache.Get(key)
}

func (s *Store) set(key string, v any) {
	s.cache.Set(key, v, cache.NoExpiration)
}

// itemsWithPrefix returns the values under prefix ordered by key.
func (s *Store) itemsWithPrefix(prefix string) []any {
	items := s.cache.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, items[k].Object)
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSlice[E any](s []E) []E {
	return append(make([]E, 0, len(s)), s...)
}
