package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

const pgUniqueViolation = "23505"

// Repositories 仓库集合
type Repositories struct {
	db *gorm.DB

	Catalog       *CatalogRepository
	Order         *OrderRepository
	WorkItem      *WorkItemRepository
	Workplan      *WorkplanRepository
	Extension     *ExtensionRepository
	ResponseTrack *ResponseTrackRepository
	Evidence      *EvidenceRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Catalog:       NewCatalogRepository(db),
		Order:         NewOrderRepository(db),
		WorkItem:      NewWorkItemRepository(db),
		Workplan:      NewWorkplanRepository(db),
		Extension:     NewExtensionRepository(db),
		ResponseTrack: NewResponseTrackRepository(db),
		Evidence:      NewEvidenceRepository(db),
	}
}

// Transaction runs fn with repositories bound to one database transaction.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
