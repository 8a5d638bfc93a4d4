package vehicle

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, v *Vehicle) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(v).Error
}

func (r *Repo) Update(ctx context.Context, v *Vehicle) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	// Save 会写所有列，包括显式置 false 的 is_available
	return db.Save(v).Error
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Where("id = ?", id).Delete(&Vehicle{}).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var v Vehicle
	if err := db.Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// List 返回全部车辆，按车牌号排序。onlyAvailable 时只返回可分配车辆。
func (r *Repo) List(ctx context.Context, onlyAvailable bool) ([]Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	q := db.Model(&Vehicle{})
	if onlyAvailable {
		q = q.Where("is_available = ?", true)
	}
	var vehicles []Vehicle
	if err := q.Order("vehicle_number").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// CountByNumber 统计车牌号占用情况；excludeID 非空时排除该车辆自身（更新场景）。
func (r *Repo) CountByNumber(ctx context.Context, vehicleNumber, excludeID string) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	q := db.Model(&Vehicle{}).Where("vehicle_number = ?", vehicleNumber)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountAssignments 统计审批记录对该车辆的引用数。
// 删除前必须为 0：审批记录是永久审计数据，不允许留下悬空的车辆引用。
// 审批表归 request 包所有，这里按表名查询避免包循环依赖。
func (r *Repo) CountAssignments(ctx context.Context, vehicleID string) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var count int64
	if err := db.Table("approvals").Where("vehicle_id = ?", vehicleID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
