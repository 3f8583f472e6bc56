package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/hierarchy"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	cacheKeyJenisItems = "catalog:jenis_items"
	cacheKeyProduks    = "catalog:produks"
)

// CatalogService 目录服务。目录数据对核心只读，可以放心缓存。
type CatalogService struct {
	repo   *repository.CatalogRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCatalogService(repo *repository.CatalogRepository, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, rdb: rdb, ttl: ttl, logger: logger}
}

// JenisItems returns the material-category catalog in catalog order.
func (s *CatalogService) JenisItems(ctx context.Context) ([]entity.JenisItem, error) {
	var items []entity.JenisItem
	if s.cacheGet(ctx, cacheKeyJenisItems, &items) {
		return items, nil
	}
	items, err := s.repo.ListJenisItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jenis items: %w", err)
	}
	s.cacheSet(ctx, cacheKeyJenisItems, items)
	return items, nil
}

// Produks returns the product catalog.
func (s *CatalogService) Produks(ctx context.Context) ([]entity.Produk, error) {
	var produks []entity.Produk
	if s.cacheGet(ctx, cacheKeyProduks, &produks) {
		return produks, nil
	}
	produks, err := s.repo.ListProduks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list produks: %w", err)
	}
	s.cacheSet(ctx, cacheKeyProduks, produks)
	return produks, nil
}

// Items returns the material catalog, optionally scoped to one category.
func (s *CatalogService) Items(ctx context.Context, jenisItemID uint64) ([]entity.Item, error) {
	return s.repo.ListItems(ctx, jenisItemID)
}

// Produk 查询单个产品
func (s *CatalogService) Produk(ctx context.Context, id uint64) (*entity.Produk, error) {
	return s.repo.FindProduk(ctx, id)
}

// Seeder builds the category seeder from the current catalog.
func (s *CatalogService) Seeder(ctx context.Context) (*hierarchy.Seeder, error) {
	items, err := s.JenisItems(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.SeederFromCatalog(items), nil
}

// Invalidate drops the cached catalog.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cacheKeyJenisItems, cacheKeyProduks).Err(); err != nil {
		s.logger.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	if s.rdb == nil {
		return false
	}
	cached, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("catalog cache miss", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return json.Unmarshal([]byte(cached), dst) == nil
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.rdb == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Debug("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// CatalogSeed is the layout of the catalog seed file.
type CatalogSeed struct {
	JenisItems []JenisItemSeed `yaml:"jenis_items"`
	Produks    []ProdukSeed    `yaml:"produks"`
}

type JenisItemSeed struct {
	Name        string     `yaml:"name"`
	IsDefault   bool       `yaml:"is_default"`
	IsAccessory bool       `yaml:"is_accessory"`
	SortOrder   int        `yaml:"sort_order"`
	Items       []ItemSeed `yaml:"items"`
}

type ItemSeed struct {
	Name string `yaml:"name"`
	Unit string `yaml:"unit"`
}

// ProdukSeed lists the raw materials of a product by item name.
type ProdukSeed struct {
	Name      string   `yaml:"name"`
	BahanBaku []string `yaml:"bahan_baku"`
}

// DefaultCatalogSeed is used when no seed file exists.
func DefaultCatalogSeed() CatalogSeed {
	return CatalogSeed{JenisItems: []JenisItemSeed{
		{Name: "Bahan Baku", IsDefault: true, SortOrder: 1},
		{Name: "Finishing Luar", IsDefault: true, SortOrder: 2},
		{Name: "Finishing Dalam", IsDefault: true, SortOrder: 3},
		{Name: "Aksesoris", IsAccessory: true, SortOrder: 4},
	}}
}

// LoadCatalogSeed reads a seed file. A missing file yields the default seed.
func LoadCatalogSeed(path string) (CatalogSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultCatalogSeed(), nil
		}
		return CatalogSeed{}, fmt.Errorf("read catalog seed: %w", err)
	}
	var seed CatalogSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return CatalogSeed{}, fmt.Errorf("parse catalog seed %s: %w", path, err)
	}
	return seed, nil
}

// Seed inserts catalog rows that are missing. Existing categories and
// products are left alone; a category's items are only seeded while it
// has none.
func (s *CatalogService) Seed(ctx context.Context, seed CatalogSeed) error {
	jenis := make([]entity.JenisItem, 0, len(seed.JenisItems))
	for _, j := range seed.JenisItems {
		jenis = append(jenis, entity.JenisItem{
			Name:        strings.TrimSpace(j.Name),
			IsDefault:   j.IsDefault,
			IsAccessory: j.IsAccessory,
			SortOrder:   j.SortOrder,
		})
	}
	if err := s.repo.SeedJenisItems(ctx, jenis); err != nil {
		return fmt.Errorf("seed jenis items: %w", err)
	}

	itemIDs := make(map[string]uint64)
	for _, j := range seed.JenisItems {
		row, err := s.repo.FindJenisItemByName(ctx, strings.TrimSpace(j.Name))
		if err != nil {
			return fmt.Errorf("find jenis item %s: %w", j.Name, err)
		}
		n, err := s.repo.CountItems(ctx, row.ID)
		if err != nil {
			return fmt.Errorf("count items: %w", err)
		}
		if n == 0 {
			for _, it := range j.Items {
				item := &entity.Item{JenisItemID: row.ID, Name: strings.TrimSpace(it.Name), Unit: it.Unit}
				if err := s.repo.CreateItem(ctx, item); err != nil {
					return fmt.Errorf("create item %s: %w", it.Name, err)
				}
			}
		}
		existing, err := s.repo.ListItems(ctx, row.ID)
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}
		for _, it := range existing {
			itemIDs[it.Name] = it.ID
		}
	}

	produks := make([]entity.Produk, 0, len(seed.Produks))
	for _, p := range seed.Produks {
		row := entity.Produk{Name: strings.TrimSpace(p.Name)}
		for _, name := range p.BahanBaku {
			id, ok := itemIDs[strings.TrimSpace(name)]
			if !ok {
				return fmt.Errorf("produk %s: unknown bahan baku %q", p.Name, name)
			}
			row.BahanBakuIDs = append(row.BahanBakuIDs, int64(id))
		}
		produks = append(produks, row)
	}
	if err := s.repo.SeedProduks(ctx, produks); err != nil {
		return fmt.Errorf("seed produks: %w", err)
	}

	s.Invalidate(ctx)
	s.logger.Info("catalog seeded", zap.Int("jenis_items", len(jenis)), zap.Int("produks", len(produks)))
	return nil
}
