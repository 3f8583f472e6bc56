package timeline

import (
	"math"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
)

func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

func countDone(stages []*Stage) int {
	n := 0
	for _, s := range stages {
		if s.Status == entity.StageStatusDone {
			n++
		}
	}
	return n
}

// ProductProgress is round(100 * done / total), 0 for no stages.
func ProductProgress(stages []*Stage) int {
	return percent(countDone(stages), len(stages))
}

// ItemProgress pools the stages of every product of one work item.
func ItemProgress(products []*ProductPlan) int {
	done, total := 0, 0
	for _, p := range products {
		done += countDone(p.Stages)
		total += len(p.Stages)
	}
	return percent(done, total)
}

// OrderProgress pools the stages of every work item of one order.
func OrderProgress(plans []*Plan) int {
	done, total := 0, 0
	for _, plan := range plans {
		for _, p := range plan.Products {
			done += countDone(p.Stages)
			total += len(p.Stages)
		}
	}
	return percent(done, total)
}

type ProductSnapshot struct {
	ProductID uint64 `json:"product_id"`
	Name      string `json:"name"`
	Done      int    `json:"done"`
	Total     int    `json:"total"`
	Progress  int    `json:"progress"`
}

type ItemSnapshot struct {
	WorkItemID uint64            `json:"work_item_id"`
	Progress   int               `json:"progress"`
	Products   []ProductSnapshot `json:"products"`
}

type OrderSnapshot struct {
	OrderID  uint64         `json:"order_id"`
	Progress int            `json:"progress"`
	Items    []ItemSnapshot `json:"items"`
}

// Snapshot derives the advisory progress view of an order's plans.
func Snapshot(orderID uint64, plans []*Plan) OrderSnapshot {
	out := OrderSnapshot{OrderID: orderID, Progress: OrderProgress(plans), Items: []ItemSnapshot{}}
	for _, plan := range plans {
		item := ItemSnapshot{
			WorkItemID: plan.WorkItemID,
			Progress:   ItemProgress(plan.Products),
			Products:   make([]ProductSnapshot, 0, len(plan.Products)),
		}
		for _, p := range plan.Products {
			item.Products = append(item.Products, ProductSnapshot{
				ProductID: p.ProductID,
				Name:      p.Name,
				Done:      countDone(p.Stages),
				Total:     len(p.Stages),
				Progress:  ProductProgress(p.Stages),
			})
		}
		out.Items = append(out.Items, item)
	}
	return out
}
