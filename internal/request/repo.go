package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayushm3018/Vechicle-Request-System/internal/vehicle"
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

func (r *Repo) Create(ctx context.Context, req *Request) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(req).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Request, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var req Request
	if err := db.Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// detailQuery 拼出带员工/审批/车辆/审批人关联的读查询。
func (r *Repo) detailQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&Request{}).
		Select("requests.*, u.name AS employee_name, u.email AS employee_email, " +
			"a.vehicle_id AS vehicle_id, v.vehicle_number AS vehicle_number, " +
			"v.make_model AS make_model, v.driver_name AS driver_name, " +
			"a.approved_by AS approved_by, admin.name AS approved_by_name").
		Joins("JOIN users u ON requests.employee_id = u.id").
		Joins("LEFT JOIN approvals a ON requests.id = a.request_id").
		Joins("LEFT JOIN vehicles v ON a.vehicle_id = v.id").
		Joins("LEFT JOIN users admin ON a.approved_by = admin.id")
}

// FindDetailByID 返回单个申请单的完整读视图。
func (r *Repo) FindDetailByID(ctx context.Context, id string) (*Detail, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var rows []Detail
	if err := r.detailQuery(db).Where("requests.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// ListForEmployee 返回员工自己的申请单（含已分配车辆信息），按创建时间倒序。
func (r *Repo) ListForEmployee(ctx context.Context, employeeID string) ([]Detail, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var rows []Detail
	err := db.Model(&Request{}).
		Select("requests.*, a.vehicle_id AS vehicle_id, v.vehicle_number AS vehicle_number, "+
			"v.make_model AS make_model, v.driver_name AS driver_name").
		Joins("LEFT JOIN approvals a ON requests.id = a.request_id").
		Joins("LEFT JOIN vehicles v ON a.vehicle_id = v.id").
		Where("requests.employee_id = ?", employeeID).
		Order("requests.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll 管理员视图：可按状态过滤 + 分页，同时返回同一过滤条件下的总数。
func (r *Repo) ListAll(ctx context.Context, status Status, offset, limit int) ([]Detail, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	countQ := db.Model(&Request{})
	if status != "" {
		countQ = countQ.Where("status = ?", status)
	}
	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.detailQuery(db)
	if status != "" {
		q = q.Where("requests.status = ?", status)
	}
	var rows []Detail
	if err := q.Order("requests.created_at DESC").Offset(offset).Limit(limit).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Approve 审批通过事务。全部成功或全部回滚：
//  1. 对 status 列做 compare-and-swap（WHERE status='pending'），0 行命中说明
//     申请单不存在或已被决定——两个并发审批恰好只有一个能命中，这是唯一的并发防线；
//  2. 校验车辆存在且可分配；
//  3. 写入一条审批记录；
//  4. 按配置可选地把车辆置为不可用（历史行为不翻转）。
//
// 返回提交后的申请单与车辆，供调用方发通知使用。
func (r *Repo) Approve(ctx context.Context, ap *Approval, markVehicleUnavailable bool) (*Request, *vehicle.Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, nil, fmt.Errorf("repo db is nil")
	}

	var (
		req Request
		veh vehicle.Vehicle
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Request{}).
			Where("id = ? AND status = ?", ap.RequestID, StatusPending).
			Update("status", StatusApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFoundOrNotPending
		}

		if err := tx.Where("id = ? AND is_available = ?", ap.VehicleID, true).First(&veh).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVehicleUnavailable
			}
			return err
		}

		if err := tx.Create(ap).Error; err != nil {
			return err
		}

		if markVehicleUnavailable {
			if err := tx.Model(&vehicle.Vehicle{}).
				Where("id = ?", ap.VehicleID).
				Update("is_available", false).Error; err != nil {
				return err
			}
			veh.IsAvailable = false
		}

		return tx.Where("id = ?", ap.RequestID).First(&req).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &req, &veh, nil
}

// Reject 审批驳回：同样以 status 列的 compare-and-swap 作为唯一并发防线，
// 单条 UPDATE 带上驳回原因，不产生附加行。
func (r *Repo) Reject(ctx context.Context, requestID, reason string) (*Request, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}

	res := db.Model(&Request{}).
		Where("id = ? AND status = ?", requestID, StatusPending).
		Updates(map[string]interface{}{
			"status":           StatusRejected,
			"rejection_reason": reason,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFoundOrNotPending
	}

	var req Request
	if err := db.Where("id = ?", requestID).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// Stats 看板统计的原始数据。
type Stats struct {
	Requests struct {
		Total    int64 `json:"total"`
		Pending  int64 `json:"pending"`
		Approved int64 `json:"approved"`
		Rejected int64 `json:"rejected"`
	} `json:"requests"`
	Vehicles struct {
		Total     int64 `json:"total"`
		Available int64 `json:"available"`
		Assigned  int64 `json:"assigned"`
	} `json:"vehicles"`
	RecentRequests int64 `json:"recentRequests"`
}

// DashboardStats 聚合看板统计：各状态申请单数、车辆占用、近 7 天新增。
func (r *Repo) DashboardStats(ctx context.Context, now time.Time) (*Stats, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}

	stats := &Stats{}

	var statusCounts []struct {
		Status Status
		Count  int64
	}
	if err := db.Model(&Request{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}
	for _, sc := range statusCounts {
		stats.Requests.Total += sc.Count
		switch sc.Status {
		case StatusPending:
			stats.Requests.Pending = sc.Count
		case StatusApproved:
			stats.Requests.Approved = sc.Count
		case StatusRejected:
			stats.Requests.Rejected = sc.Count
		}
	}

	if err := db.Model(&vehicle.Vehicle{}).Count(&stats.Vehicles.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&vehicle.Vehicle{}).
		Where("is_available = ?", true).
		Count(&stats.Vehicles.Available).Error; err != nil {
		return nil, err
	}
	stats.Vehicles.Assigned = stats.Vehicles.Total - stats.Vehicles.Available

	if err := db.Model(&Request{}).
		Where("created_at >= ?", now.AddDate(0, 0, -7)).
		Count(&stats.RecentRequests).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
