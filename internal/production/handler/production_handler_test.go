package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/config"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/handler"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/repository"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/service"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/sse"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type catalogFixture struct {
	bahanBaku      uint64
	finishingLuar  uint64
	finishingDalam uint64
	aksesoris      uint64
	plywood        uint64
	produk         uint64
}

func setupProductionTest(t *testing.T) (*gin.Engine, *gorm.DB, catalogFixture) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{Production: config.ProductionConfig{
		DefaultStages:    config.DefaultStageNames,
		ApproverRole:     testutil.ApproverRole,
		MaxExtensionDays: 30,
	}}
	hub := sse.NewHub(nil)
	svc := service.NewServices(repository.NewRepositories(db), nil, cfg, nil, nil, nil, hub)
	if err := svc.Catalog.Seed(context.Background(), service.DefaultCatalogSeed()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	var fx catalogFixture
	ids := map[string]*uint64{
		"Bahan Baku":      &fx.bahanBaku,
		"Finishing Luar":  &fx.finishingLuar,
		"Finishing Dalam": &fx.finishingDalam,
		"Aksesoris":       &fx.aksesoris,
	}
	for name, dst := range ids {
		var j entity.JenisItem
		if err := db.Where("name = ?", name).First(&j).Error; err != nil {
			t.Fatalf("find %s: %v", name, err)
		}
		*dst = j.ID
	}
	item := &entity.Item{JenisItemID: fx.bahanBaku, Name: "Plywood 18mm", Unit: "lembar"}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	fx.plywood = item.ID
	produk := &entity.Produk{Name: "Kitchen Set"}
	if err := db.Create(produk).Error; err != nil {
		t.Fatalf("seed produk: %v", err)
	}
	fx.produk = produk.ID

	r := testutil.SetupRouter()
	handler.RegisterRoutes(testutil.AuthGroup(r, "/api/v1"), handler.NewHandlers(svc, cfg, hub))
	return r, db, fx
}

// productBody is a new product with every default category listed.
func productBody(fx catalogFixture, produkID interface{}, lineQty int) map[string]interface{} {
	return map[string]interface{}{
		"produk_id":    produkID,
		"nama_ruangan": "Dapur",
		"quantity":     2,
		"categories": []map[string]interface{}{
			{"jenis_item_id": fx.bahanBaku, "lines": []map[string]interface{}{{"item_id": fx.plywood, "quantity": lineQty}}},
			{"jenis_item_id": fx.finishingLuar},
			{"jenis_item_id": fx.finishingDalam},
		},
	}
}

func data(resp map[string]interface{}) map[string]interface{} {
	d, _ := resp["data"].(map[string]interface{})
	return d
}

// publishedWorkItem creates an order with a published work item of one product.
func publishedWorkItem(t *testing.T, r *gin.Engine, db *gorm.DB, fx catalogFixture) (orderID, workItemID, productID uint64) {
	t.Helper()
	token := testutil.DefaultTestToken()
	order, da := testutil.SeedOrder(t, db, "Rumah Test")

	w := testutil.DoRequest(r, "POST", fmt.Sprintf("/api/v1/orders/%d/work-items", order.ID),
		map[string]interface{}{"design_approval_id": da.ID}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("respond: %d %s", w.Code, w.Body.String())
	}
	workItemID = uint64(data(testutil.ParseResponse(w))["id"].(float64))

	w = testutil.DoRequest(r, "PUT", fmt.Sprintf("/api/v1/work-items/%d", workItemID), map[string]interface{}{
		"mode":     "publish",
		"products": []map[string]interface{}{productBody(fx, fx.produk, 1)},
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("publish: %d %s", w.Code, w.Body.String())
	}
	doc := data(testutil.ParseResponse(w))["document"].(map[string]interface{})
	product := doc["products"].([]interface{})[0].(map[string]interface{})
	return order.ID, workItemID, uint64(product["id"].(float64))
}

func TestWorkItemRespondOncePerDesignApproval(t *testing.T) {
	r, db, _ := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order, da := testutil.SeedOrder(t, db, "Apartemen")
	path := fmt.Sprintf("/api/v1/orders/%d/work-items", order.ID)

	w := testutil.DoRequest(r, "POST", path, map[string]interface{}{"design_approval_id": da.ID}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	item := data(testutil.ParseResponse(w))
	if item["status"] != entity.WorkItemStatusDraft || item["response_by"] != "test-admin" {
		t.Errorf("unexpected work item: %v", item)
	}

	w = testutil.DoRequest(r, "POST", path, map[string]interface{}{"design_approval_id": da.ID}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if code := testutil.ParseResponse(w)["code"].(float64); code != 40902 {
		t.Errorf("expected code 40902, got %v", code)
	}

	w = testutil.DoRequest(r, "GET", path, nil, token)
	items := data(testutil.ParseResponse(w))["items"].([]interface{})
	if len(items) != 1 {
		t.Errorf("expected 1 work item, got %d", len(items))
	}
}

func TestWorkItemSaveDraftThenPublish(t *testing.T) {
	r, db, fx := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order, da := testutil.SeedOrder(t, db, "Kantor")

	w := testutil.DoRequest(r, "POST", fmt.Sprintf("/api/v1/orders/%d/work-items", order.ID),
		map[string]interface{}{"design_approval_id": da.ID}, token)
	workItemID := uint64(data(testutil.ParseResponse(w))["id"].(float64))
	path := fmt.Sprintf("/api/v1/work-items/%d", workItemID)

	t.Run("publish needs catalog product", func(t *testing.T) {
		w := testutil.DoRequest(r, "PUT", path, map[string]interface{}{
			"mode":     "publish",
			"products": []map[string]interface{}{productBody(fx, nil, 1)},
		}, token)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
		}
		if code := testutil.ParseResponse(w)["code"].(float64); code != 40008 {
			t.Errorf("expected code 40008, got %v", code)
		}
	})

	t.Run("draft keeps incomplete products", func(t *testing.T) {
		w := testutil.DoRequest(r, "PUT", path, map[string]interface{}{
			"mode":     "draft",
			"products": []map[string]interface{}{productBody(fx, nil, 5)},
		}, token)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		res := data(testutil.ParseResponse(w))
		doc := res["document"].(map[string]interface{})
		if doc["status"] != entity.WorkItemStatusDraft {
			t.Errorf("expected draft, got %v", doc["status"])
		}
		if resolved := res["resolved_ids"].(map[string]interface{}); len(resolved) == 0 {
			t.Errorf("expected resolved draft ids")
		}
		product := doc["products"].([]interface{})[0].(map[string]interface{})
		bahan := product["categories"].([]interface{})[0].(map[string]interface{})
		line := bahan["lines"].([]interface{})[0].(map[string]interface{})
		if line["quantity"].(float64) != 1 {
			t.Errorf("bahan baku quantity must be forced to 1, got %v", line["quantity"])
		}
	})

	t.Run("stale version", func(t *testing.T) {
		w := testutil.DoRequest(r, "PUT", path, map[string]interface{}{
			"version":  1,
			"mode":     "draft",
			"products": []map[string]interface{}{},
		}, token)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTimelineLocksUntilExtensionApproved(t *testing.T) {
	r, db, fx := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	orderID, workItemID, productID := publishedWorkItem(t, r, db, fx)
	timelinePath := fmt.Sprintf("/api/v1/orders/%d/timeline", orderID)

	body := map[string]interface{}{
		"items": []map[string]interface{}{{
			"work_item_id": workItemID,
			"start_date":   "2025-03-01T00:00:00Z",
			"end_date":     "2025-03-31T00:00:00Z",
			"products": []map[string]interface{}{{
				"product_id": productID,
				"stages": []map[string]interface{}{
					{"nama_tahapan": "Potong", "start_date": "2025-03-01T00:00:00Z", "end_date": "2025-03-05T00:00:00Z"},
					{"nama_tahapan": "Rangkai", "start_date": "2025-03-06T00:00:00Z", "end_date": "2025-03-10T00:00:00Z"},
				},
			}},
		}},
	}

	w := testutil.DoRequest(r, "PUT", timelinePath, body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}
	if data(testutil.ParseResponse(w))["editable"] != false {
		t.Fatalf("timeline must lock after submit")
	}

	w = testutil.DoRequest(r, "PUT", timelinePath, body, token)
	if w.Code != http.StatusLocked {
		t.Fatalf("expected 423, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, "GET", fmt.Sprintf("/api/v1/work-items/%d/workplan", workItemID), nil, token)
	view := data(testutil.ParseResponse(w))
	plan := view["plan"].(map[string]interface{})
	stages := plan["products"].([]interface{})[0].(map[string]interface{})["stages"].([]interface{})
	if len(stages) != 2 || view["editable"] != false {
		t.Fatalf("unexpected plan: %v", view)
	}

	w = testutil.DoRequest(r, "POST", fmt.Sprintf("/api/v1/work-items/%d/extension-requests", workItemID),
		map[string]interface{}{"reason": "Material terlambat"}, testutil.StaffToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("request extension: %d %s", w.Code, w.Body.String())
	}
	requestID := uint64(data(testutil.ParseResponse(w))["id"].(float64))
	resolvePath := fmt.Sprintf("/api/v1/extension-requests/%d/resolve", requestID)

	w = testutil.DoRequest(r, "POST", resolvePath, map[string]interface{}{"status": "approved"}, testutil.StaffToken())
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non approver, got %d", w.Code)
	}

	w = testutil.DoRequest(r, "POST", resolvePath, map[string]interface{}{"status": "approved"}, testutil.ApproverToken())
	if w.Code != http.StatusOK {
		t.Fatalf("resolve: %d %s", w.Code, w.Body.String())
	}
	gate := data(testutil.ParseResponse(w))["gate"].(map[string]interface{})
	if gate["editable"] != true {
		t.Fatalf("approved extension must unlock the timeline: %v", gate)
	}

	w = testutil.DoRequest(r, "POST", resolvePath, map[string]interface{}{"status": "rejected"}, testutil.ApproverToken())
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for resolved request, got %d", w.Code)
	}

	w = testutil.DoRequest(r, "PUT", timelinePath, body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("resubmit: %d %s", w.Code, w.Body.String())
	}
}

func TestTimelineRejectsStageOutsideWindow(t *testing.T) {
	r, db, fx := setupProductionTest(t)
	orderID, workItemID, productID := publishedWorkItem(t, r, db, fx)

	w := testutil.DoRequest(r, "PUT", fmt.Sprintf("/api/v1/orders/%d/timeline", orderID), map[string]interface{}{
		"items": []map[string]interface{}{{
			"work_item_id": workItemID,
			"start_date":   "2025-03-01T00:00:00Z",
			"end_date":     "2025-03-10T00:00:00Z",
			"products": []map[string]interface{}{{
				"product_id": productID,
				"stages": []map[string]interface{}{
					{"nama_tahapan": "Potong", "start_date": "2025-03-08T00:00:00Z", "end_date": "2025-03-12T00:00:00Z"},
				},
			}},
		}},
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if code := testutil.ParseResponse(w)["code"].(float64); code != 40006 {
		t.Errorf("expected code 40006, got %v", code)
	}

	// nothing was saved, so the order stays editable
	w = testutil.DoRequest(r, "GET", fmt.Sprintf("/api/v1/orders/%d/timeline/gate", orderID), nil, testutil.DefaultTestToken())
	if data(testutil.ParseResponse(w))["editable"] != true {
		t.Errorf("rejected submit must not lock the order")
	}
}

func TestMarketingResponseNeedsApprover(t *testing.T) {
	r, db, _ := setupProductionTest(t)
	order, _ := testutil.SeedOrder(t, db, "Villa")

	w := testutil.DoRequest(r, "POST", "/api/v1/response-tracks", map[string]interface{}{
		"order_id":      order.ID,
		"stage":         service.StageItemPekerjaan,
		"track":         "marketing",
		"duration_days": 3,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("open track: %d %s", w.Code, w.Body.String())
	}

	path := fmt.Sprintf("/api/v1/orders/%d/responses", order.ID)
	body := map[string]interface{}{"stage": service.StageItemPekerjaan, "track": "marketing"}

	w = testutil.DoRequest(r, "POST", path, body, testutil.StaffToken())
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	w = testutil.DoRequest(r, "POST", path, body, testutil.ApproverToken())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if track := data(testutil.ParseResponse(w)); track["status"] != entity.ResponseStatusResponded {
		t.Errorf("unexpected track: %v", track)
	}

	w = testutil.DoRequest(r, "POST", path, body, testutil.ApproverToken())
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 on second response, got %d", w.Code)
	}
}

func TestExportRequiresPermission(t *testing.T) {
	r, _, _ := setupProductionTest(t)

	w := testutil.DoRequest(r, "GET", "/api/v1/workplans/export", nil, testutil.StaffToken())
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/workplans/export", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestStageStatusUpdatesWhileLocked(t *testing.T) {
	r, db, fx := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	orderID, workItemID, productID := publishedWorkItem(t, r, db, fx)
	statusPath := func(urutan int) string {
		return fmt.Sprintf("/api/v1/products/%d/stages/%d/status", productID, urutan)
	}

	// default stages exist only in memory until the first write
	var count int64
	db.Model(&entity.WorkplanItem{}).Where("work_item_product_id = ?", productID).Count(&count)
	if count != 0 {
		t.Fatalf("expected no stored stages yet, got %d", count)
	}

	w := testutil.DoRequest(r, "PUT", statusPath(1), map[string]interface{}{"status": entity.StageStatusInProgress}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("status on seeded stage: %d %s", w.Code, w.Body.String())
	}
	db.Model(&entity.WorkplanItem{}).Where("work_item_product_id = ?", productID).Count(&count)
	if int(count) != len(config.DefaultStageNames) {
		t.Errorf("stored stages = %d, want %d", count, len(config.DefaultStageNames))
	}
	var product entity.WorkItemProduct
	db.First(&product, productID)
	if product.CurrentStage != "Potong" {
		t.Errorf("current stage = %q, want Potong", product.CurrentStage)
	}

	w = testutil.DoRequest(r, "PUT", fmt.Sprintf("/api/v1/orders/%d/timeline", orderID), map[string]interface{}{
		"items": []map[string]interface{}{{
			"work_item_id": workItemID,
			"start_date":   "2025-03-01T00:00:00Z",
			"end_date":     "2025-03-31T00:00:00Z",
			"products": []map[string]interface{}{{
				"product_id": productID,
				"stages": []map[string]interface{}{
					{"nama_tahapan": "Potong", "start_date": "2025-03-01T00:00:00Z", "end_date": "2025-03-05T00:00:00Z"},
					{"nama_tahapan": "Rangkai", "start_date": "2025-03-06T00:00:00Z", "end_date": "2025-03-10T00:00:00Z"},
				},
			}},
		}},
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, "PUT", statusPath(2), map[string]interface{}{"status": entity.StageStatusInProgress}, testutil.StaffToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status while locked: %d %s", w.Code, w.Body.String())
	}
	var stage entity.WorkplanItem
	db.Where("work_item_product_id = ? AND urutan = ?", productID, 2).First(&stage)
	if stage.Status != entity.StageStatusInProgress {
		t.Errorf("stage status = %q", stage.Status)
	}
	db.First(&product, productID)
	if product.CurrentStage != "Rangkai" {
		t.Errorf("current stage = %q, want Rangkai", product.CurrentStage)
	}

	w = testutil.DoRequest(r, "PUT", statusPath(2), map[string]interface{}{"status": "finished"}, token)
	if code := testutil.ParseResponse(w)["code"].(float64); code != 40009 {
		t.Errorf("expected code 40009, got %v", code)
	}
	w = testutil.DoRequest(r, "PUT", statusPath(5), map[string]interface{}{"status": entity.StageStatusDone}, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing stage, got %d", w.Code)
	}
}

func TestWorkplanEditsKeepDatesValid(t *testing.T) {
	r, db, fx := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	_, workItemID, productID := publishedWorkItem(t, r, db, fx)
	base := fmt.Sprintf("/api/v1/work-items/%d/workplan", workItemID)
	datePath := fmt.Sprintf("%s/products/%d/stages/1/date", base, productID)

	w := testutil.DoRequest(r, "PUT", base+"/window", map[string]interface{}{
		"start_date": "2025-01-01T00:00:00Z", "end_date": "2025-01-31T00:00:00Z",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("window: %d %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(r, "PUT", datePath, map[string]interface{}{"field": "start", "value": "2025-01-05T00:00:00Z"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("start date: %d %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, "PUT", base+"/window", map[string]interface{}{
		"start_date": "2025-01-10T00:00:00Z", "end_date": "2025-01-31T00:00:00Z",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("shrinking past a stage: expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if code := resp["code"].(float64); code != 40006 {
		t.Errorf("expected code 40006, got %v", code)
	}
	if detail := data(resp); detail["stage"] == nil || detail["product"] == nil {
		t.Errorf("error should name product and stage: %v", detail)
	}

	w = testutil.DoRequest(r, "PUT", datePath, map[string]interface{}{"field": "end", "value": "2025-01-03T00:00:00Z"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("inverted pair: expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if code := testutil.ParseResponse(w)["code"].(float64); code != 40005 {
		t.Errorf("expected code 40005, got %v", code)
	}

	w = testutil.DoRequest(r, "GET", base, nil, token)
	plan := data(testutil.ParseResponse(w))["plan"].(map[string]interface{})
	window := plan["window"].(map[string]interface{})
	if !strings.HasPrefix(window["start_date"].(string), "2025-01-01") {
		t.Errorf("refused window was stored: %v", window)
	}
	stage := plan["products"].([]interface{})[0].(map[string]interface{})["stages"].([]interface{})[0].(map[string]interface{})
	if stage["end_date"] != nil {
		t.Errorf("refused end date was stored: %v", stage["end_date"])
	}
}

func TestPublishedWorkItemStaysPublished(t *testing.T) {
	r, db, fx := setupProductionTest(t)
	_, workItemID, _ := publishedWorkItem(t, r, db, fx)

	w := testutil.DoRequest(r, "PUT", fmt.Sprintf("/api/v1/work-items/%d", workItemID), map[string]interface{}{
		"mode":     "draft",
		"products": []map[string]interface{}{productBody(fx, fx.produk, 1)},
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	var item entity.WorkItem
	db.First(&item, workItemID)
	if item.Status != entity.WorkItemStatusPublished {
		t.Errorf("status = %s, want published", item.Status)
	}
}
