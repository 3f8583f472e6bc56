package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/config"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/repository"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/sse"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/shared/notify"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/shared/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrStorageUnavailable is returned by evidence uploads when no object
// storage is configured.
var ErrStorageUnavailable = errors.New("object storage is not configured")

// ObjectStore is the part of the object storage the services need.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key, fileName string, expiry time.Duration) (string, error)
}

// Services 服务集合
type Services struct {
	Catalog   *CatalogService
	WorkItem  *WorkItemService
	Schedule  *ScheduleService
	Extension *ExtensionService
	Response  *ResponseService
	Export    *ExportService
	Evidence  *EvidenceService
}

// NewServices 创建服务集合。objects 和 rdb 可以为 nil。
func NewServices(
	repos *repository.Repositories,
	rdb *redis.Client,
	cfg *config.Config,
	logger *zap.Logger,
	objects *storage.ObjectStore,
	notifier notify.Notifier,
	hub *sse.Hub,
) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if hub == nil {
		hub = sse.NewHub(logger)
	}
	var store ObjectStore
	if objects != nil {
		store = objects
	}

	catalog := NewCatalogService(repos.Catalog, rdb, cfg.Production.CatalogCacheTTL, logger)
	schedule := NewScheduleService(repos, cfg.Production.DefaultStages, notifier, hub, logger)

	return &Services{
		Catalog:   catalog,
		WorkItem:  NewWorkItemService(repos, catalog, hub),
		Schedule:  schedule,
		Extension: NewExtensionService(repos, schedule, notifier, hub, logger),
		Response:  NewResponseService(repos, cfg.Production, notifier, hub, logger),
		Export:    NewExportService(repos, schedule),
		Evidence:  NewEvidenceService(repos, store, cfg.Production.EvidenceKeyPrefix),
	}
}

// notifyAsync delivers a message without failing the caller's operation.
func notifyAsync(logger *zap.Logger, notifier notify.Notifier, msg notify.Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := notifier.Notify(ctx, msg); err != nil {
			logger.Warn("notification failed", zap.String("event", msg.Event), zap.Uint64("order_id", msg.OrderID), zap.Error(err))
		}
	}()
}
