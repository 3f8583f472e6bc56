package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/repository"
	"github.com/google/uuid"
)

const evidenceURLExpiry = time.Hour

// EvidenceService 阶段证明文件
type EvidenceService struct {
	repos  *repository.Repositories
	store  ObjectStore
	prefix string
}

func NewEvidenceService(repos *repository.Repositories, store ObjectStore, prefix string) *EvidenceService {
	return &EvidenceService{repos: repos, store: store, prefix: prefix}
}

// EvidenceUpload 上传参数
type EvidenceUpload struct {
	StageName   string
	FileName    string
	Size        int64
	ContentType string
	Notes       string
	Body        io.Reader
}

// Upload stores a file for one stage of a product and makes that stage
// the product's current stage.
func (s *EvidenceService) Upload(ctx context.Context, productID uint64, up EvidenceUpload, by string) (*entity.StageEvidence, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}
	stage := strings.TrimSpace(up.StageName)
	if stage == "" {
		return nil, entity.Fail(entity.ErrMissingStageName, "")
	}
	if _, err := s.repos.WorkItem.FindProduct(ctx, productID); err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}

	key := path.Join(s.prefix, fmt.Sprint(productID), uuid.New().String()+path.Ext(up.FileName))
	if err := s.store.Put(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return nil, fmt.Errorf("upload evidence: %w", err)
	}

	ev := &entity.StageEvidence{
		WorkItemProductID: productID,
		StageName:         stage,
		ObjectKey:         key,
		FileName:          up.FileName,
		FileSize:          up.Size,
		ContentType:       up.ContentType,
		Notes:             up.Notes,
		UploadedBy:        by,
	}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Evidence.Create(ctx, ev); err != nil {
			return fmt.Errorf("create evidence: %w", err)
		}
		return tx.WorkItem.UpdateCurrentStage(ctx, productID, stage)
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// EvidenceView is an evidence record with a temporary download link.
type EvidenceView struct {
	entity.StageEvidence
	URL string `json:"url,omitempty"`
}

func (s *EvidenceService) List(ctx context.Context, productID uint64) ([]EvidenceView, error) {
	rows, err := s.repos.Evidence.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	out := make([]EvidenceView, 0, len(rows))
	for _, r := range rows {
		v := EvidenceView{StageEvidence: r}
		if s.store != nil {
			if u, err := s.store.PresignedURL(ctx, r.ObjectKey, r.FileName, evidenceURLExpiry); err == nil {
				v.URL = u
			}
		}
		out = append(out, v)
	}
	return out, nil
}
