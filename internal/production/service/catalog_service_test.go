package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mustDay(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestLoadCatalogSeedMissingFile(t *testing.T) {
	seed, err := LoadCatalogSeed(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var defaults []string
	for _, j := range seed.JenisItems {
		if j.IsDefault {
			defaults = append(defaults, j.Name)
		}
		if j.Name == "Aksesoris" && (j.IsDefault || !j.IsAccessory) {
			t.Errorf("Aksesoris must be a user-added accessory category")
		}
	}
	if len(defaults) != 3 || defaults[0] != "Bahan Baku" {
		t.Fatalf("defaults = %v", defaults)
	}
}

func TestLoadCatalogSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
jenis_items:
  - name: Bahan Baku
    is_default: true
    sort_order: 1
    items:
      - name: Multiplek 18mm
        unit: lembar
produks:
  - name: Kitchen Set
    bahan_baku: [Multiplek 18mm]
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	seed, err := LoadCatalogSeed(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(seed.JenisItems) != 1 || seed.JenisItems[0].Items[0].Unit != "lembar" {
		t.Fatalf("jenis items = %+v", seed.JenisItems)
	}
	if len(seed.Produks) != 1 || seed.Produks[0].BahanBaku[0] != "Multiplek 18mm" {
		t.Fatalf("produks = %+v", seed.Produks)
	}
}

func TestLoadCatalogSeedRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("jenis_items: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalogSeed(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
