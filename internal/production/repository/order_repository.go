package repository

import (
	"context"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"gorm.io/gorm"
)

// OrderRepository reads inbound order context. The core never writes orders.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint64) (*entity.Order, error) {
	var o entity.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *OrderRepository) FindDesignApproval(ctx context.Context, id uint64) (*entity.DesignApproval, error) {
	var d entity.DesignApproval
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}
