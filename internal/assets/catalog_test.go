package assets

import (
	"os"
	"path/filepath"
	"testing"

	"void-arena/internal/game"
)

func TestEmptyDirAllowsEverything(t *testing.T) {
	c := Load("")

	for _, k := range game.EnemyKinds {
		if !c.Available(k) {
			t.Errorf("%v should be available", k)
		}
	}
	if len(c.Missing()) != 0 {
		t.Errorf("Nothing should be missing, got %v", c.Missing())
	}
}

func TestMissingModelsDisableKinds(t *testing.T) {
	dir := t.TempDir()
	scout := filepath.Join(dir, game.StatsFor(game.EnemyScout).Model)
	if err := os.WriteFile(scout, []byte("model"), 0644); err != nil {
		t.Fatal(err)
	}
	// A directory with the model's name does not count
	if err := os.Mkdir(filepath.Join(dir, game.StatsFor(game.EnemyHeavy).Model), 0755); err != nil {
		t.Fatal(err)
	}

	c := Load(dir)

	if !c.Available(game.EnemyScout) {
		t.Error("Scout model exists and should be available")
	}
	if c.Available(game.EnemyFighter) || c.Available(game.EnemyHeavy) {
		t.Error("Fighter and heavy should be disabled")
	}
	if len(c.Missing()) != 2 {
		t.Errorf("Expected 2 missing models, got %v", c.Missing())
	}
	if c.Available(game.EnemyKind(99)) {
		t.Error("Unknown kinds are never available")
	}
}

func TestCatalogDrivesSpawnWeights(t *testing.T) {
	c := Load(t.TempDir())

	w := game.WeightsFor(0.5, c.Available)
	if w.Sum() != 0 {
		t.Errorf("Empty model dir should zero every weight, got %v", w)
	}
	if _, ok := game.PickKind(w, 0.5); ok {
		t.Error("No kind should be picked")
	}
}
