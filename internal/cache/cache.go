// Package cache keeps small JSON documents in the cache directory for a limited time.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tvplay-cli/tvplay/filesystem"
	"github.com/tvplay-cli/tvplay/log"
	"github.com/tvplay-cli/tvplay/where"
)

const TTL = 24 * time.Hour

// Key hashes parts into a file-safe cache identifier.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(hash[:])
}

// Read decodes the entry stored under key into target. Missing, expired and
// corrupt entries report false.
func Read(key string, target any) bool {
	path := filepath.Join(where.Cache(), key)

	info, err := filesystem.API().Stat(path)
	if err != nil || time.Since(info.ModTime()) > TTL {
		return false
	}

	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, target) == nil
}

// Write stores data under key, replacing the previous entry atomically.
func Write(key string, data any) error {
	path := filepath.Join(where.Cache(), key)
	tmpPath := path + ".tmp"

	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if err := filesystem.API().WriteFile(tmpPath, encoded, 0o644); err != nil {
		return err
	}
	return filesystem.API().Rename(tmpPath, path)
}

// CollectGarbage removes expired entries.
func CollectGarbage() {
	var removed int
	_ = filesystem.API().Walk(where.Cache(), func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if time.Since(info.ModTime()) > TTL {
			if filesystem.API().Remove(path) == nil {
				removed++
			}
		}
		return nil
	})

	if removed > 0 {
		log.Debugf("Removed %d expired cache entries", removed)
	}
}
