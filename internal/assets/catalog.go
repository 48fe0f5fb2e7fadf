// Package assets reports which enemy models are present on disk.
package assets

import (
	"log"
	"os"
	"path/filepath"

	"void-arena/internal/game"
)

// Catalog implements game.ModelCatalog over a model directory.
// Kinds whose model file is missing are never spawned.
type Catalog struct {
	dir       string
	available [len(game.EnemyKinds)]bool
	missing   []string
}

// Load scans dir for every enemy model. An empty dir means models are not
// managed by this process and every kind is available.
func Load(dir string) *Catalog {
	c := &Catalog{dir: dir}

	for _, k := range game.EnemyKinds {
		if dir == "" {
			c.available[k] = true
			continue
		}

		name := game.StatsFor(k).Model
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			log.Printf("⚠️ Enemy model %s not found, %s disabled", path, k)
			c.missing = append(c.missing, name)
			continue
		}
		c.available[k] = true
	}

	if dir != "" && len(c.missing) == len(game.EnemyKinds) {
		log.Printf("⚠️ No enemy models in %s, arena will stay empty", dir)
	} else if dir != "" {
		log.Printf("📦 Loaded enemy models from %s (%d missing)", dir, len(c.missing))
	}
	return c
}

// Available reports whether kind may be spawned
func (c *Catalog) Available(kind game.EnemyKind) bool {
	if int(kind) >= len(c.available) {
		return false
	}
	return c.available[kind]
}

// Missing lists model files that could not be found
func (c *Catalog) Missing() []string {
	out := make([]string, len(c.missing))
	copy(out, c.missing)
	return out
}

// Dir returns the scanned directory
func (c *Catalog) Dir() string {
	return c.dir
}
