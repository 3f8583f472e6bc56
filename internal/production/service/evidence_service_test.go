package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/repository"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/testutil"
)

// memoryStore keeps uploaded objects in memory.
type memoryStore struct {
	objects map[string][]byte
	failPut error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if m.failPut != nil {
		return m.failPut
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = b
	return nil
}

func (m *memoryStore) PresignedURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://files.test/" + key, nil
}

func TestEvidenceUploadWithoutStorage(t *testing.T) {
	svc := NewEvidenceService(nil, nil, "evidence")
	_, err := svc.Upload(context.Background(), 1, EvidenceUpload{StageName: "Potong"}, "u1")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
}

func TestEvidenceUploadAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	order, da := testutil.SeedOrder(t, db, "Ruko")
	item := &entity.WorkItem{OrderID: order.ID, DesignApprovalID: da.ID, Status: entity.WorkItemStatusPublished}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed work item: %v", err)
	}
	product := &entity.WorkItemProduct{WorkItemID: item.ID, NamaRuangan: "Dapur", Quantity: 1}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	objects := newMemoryStore()
	svc := NewEvidenceService(repository.NewRepositories(db), objects, "evidence")
	upload := func(stage string) EvidenceUpload {
		body := []byte("jpeg bytes")
		return EvidenceUpload{
			StageName:   stage,
			FileName:    "foto.jpg",
			Size:        int64(len(body)),
			ContentType: "image/jpeg",
			Body:        bytes.NewReader(body),
		}
	}

	if _, err := svc.Upload(ctx, product.ID, upload("  "), "u1"); !errors.Is(err, entity.ErrMissingStageName) {
		t.Fatalf("blank stage: err = %v, want ErrMissingStageName", err)
	}
	if _, err := svc.Upload(ctx, product.ID+100, upload("Potong"), "u1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown product: err = %v, want ErrNotFound", err)
	}

	ev, err := svc.Upload(ctx, product.ID, upload(" Rangkai "), "u1")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if ev.StageName != "Rangkai" || !strings.HasPrefix(ev.ObjectKey, "evidence/") || !strings.HasSuffix(ev.ObjectKey, ".jpg") {
		t.Errorf("unexpected evidence: %+v", ev)
	}
	if string(objects.objects[ev.ObjectKey]) != "jpeg bytes" {
		t.Errorf("stored object = %q", objects.objects[ev.ObjectKey])
	}
	var stored entity.WorkItemProduct
	db.First(&stored, product.ID)
	if stored.CurrentStage != "Rangkai" {
		t.Errorf("current stage = %q, want Rangkai", stored.CurrentStage)
	}

	// a failed upload leaves no record behind
	objects.failPut = errors.New("bucket offline")
	if _, err := svc.Upload(ctx, product.ID, upload("Finishing"), "u1"); err == nil {
		t.Fatalf("expected upload error")
	}

	views, err := svc.List(ctx, product.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("evidence = %d, want 1", len(views))
	}
	if views[0].URL != "https://files.test/"+ev.ObjectKey || views[0].UploadedBy != "u1" {
		t.Errorf("unexpected view: %+v", views[0])
	}
}
