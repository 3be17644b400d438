// Package history persists the last playback position of every played source.
package history

import (
	"math"
	"sort"

	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/tvplay-cli/tvplay/filesystem"
	"github.com/tvplay-cli/tvplay/where"
)

var cacher = gache.New[map[string]*Entry](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns every saved entry keyed by URL.
func Get() (map[string]*Entry, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Save records entry, replacing any previous entry for the same URL.
// Non-finite positions and durations are stored as zero.
func Save(entry Entry) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	entry.Position = finite(entry.Position)
	entry.Duration = finite(entry.Duration)
	saved[entry.URL] = &entry

	return cacher.Set(saved)
}

// Recent returns the saved entries, most recently watched first.
func Recent() ([]*Entry, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].WatchedAt.After(entries[j].WatchedAt)
	})
	return entries, nil
}

// Last returns the most recently watched entry, if any.
func Last() (*Entry, bool, error) {
	entries, err := Recent()
	if err != nil {
		return nil, false, err
	}
	if len(entries) == 0 {
		return nil, false, nil
	}
	return entries[0], true, nil
}

// Remove deletes the entry for url.
func Remove(url string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, url)
	return cacher.Set(saved)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
