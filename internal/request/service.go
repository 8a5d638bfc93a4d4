package request

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ayushm3018/Vechicle-Request-System/internal/common/config"
	"github.com/ayushm3018/Vechicle-Request-System/internal/common/logger"
	"github.com/ayushm3018/Vechicle-Request-System/internal/user"
	"github.com/ayushm3018/Vechicle-Request-System/internal/vehicle"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// timePattern 与历史接口保持一致：允许 H:MM 或 HH:MM，小时 0-23，分钟 00-59。
var timePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Notifier 申请单生命周期的通知回调。实现方 best-effort：
// 返回的错误只会被记日志，绝不会影响触发它的写操作。
type Notifier interface {
	// NewRequestSubmitted 新申请单已提交，通知管理员侧。
	NewRequestSubmitted(req *Request, employee *user.User) error
	// RequestDecided 申请单已被决定，通知员工。approved 时 veh 非空。
	RequestDecided(req *Request, employee *user.User, veh *vehicle.Vehicle) error
}

// Service 申请单生命周期引擎：状态机 + 审批事务 + 派生统计。
// 鉴权/角色校验由 API 边界完成，这里假设入参里的身份已经过检查。
type Service struct {
	repo        *Repo
	users       *user.Repo
	notifier    Notifier
	log         logger.Logger
	approvalCfg config.ApprovalConfig
}

func NewService(repo *Repo, users *user.Repo, notifier Notifier, log logger.Logger, approvalCfg config.ApprovalConfig) *Service {
	return &Service{
		repo:        repo,
		users:       users,
		notifier:    notifier,
		log:         log,
		approvalCfg: approvalCfg,
	}
}

// SubmitInput 提交申请单的 8 个出行字段。
type SubmitInput struct {
	OfficerName    string `json:"officer_name"`
	Designation    string `json:"designation"`
	RequiredDate   string `json:"required_date"`
	RequiredTime   string `json:"required_time"`
	ReportPlace    string `json:"report_place"`
	PlacesToVisit  string `json:"places_to_visit"`
	JourneyPurpose string `json:"journey_purpose"`
	ReleaseTime    string `json:"release_time"`
}

func (in *SubmitInput) validate() error {
	ve := &ValidationError{}

	trim := func(s string) string { return strings.TrimSpace(s) }
	requireField := func(field, value string) string {
		v := trim(value)
		if v == "" {
			ve.Fields = append(ve.Fields, FieldError{Field: field, Message: field + " is required"})
		}
		return v
	}

	in.OfficerName = requireField("officer_name", in.OfficerName)
	in.Designation = requireField("designation", in.Designation)
	in.ReportPlace = requireField("report_place", in.ReportPlace)
	in.PlacesToVisit = requireField("places_to_visit", in.PlacesToVisit)
	in.JourneyPurpose = requireField("journey_purpose", in.JourneyPurpose)

	in.RequiredDate = trim(in.RequiredDate)
	if _, err := time.Parse("2006-01-02", in.RequiredDate); err != nil {
		ve.Fields = append(ve.Fields, FieldError{Field: "required_date", Message: "valid required date is required (YYYY-MM-DD)"})
	}

	in.RequiredTime = trim(in.RequiredTime)
	if !timePattern.MatchString(in.RequiredTime) {
		ve.Fields = append(ve.Fields, FieldError{Field: "required_time", Message: "valid required time is required (HH:MM)"})
	}
	in.ReleaseTime = trim(in.ReleaseTime)
	if !timePattern.MatchString(in.ReleaseTime) {
		ve.Fields = append(ve.Fields, FieldError{Field: "release_time", Message: "valid release time is required (HH:MM)"})
	}

	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

// Submit 员工提交申请单：校验通过后落库为 pending，并异步通知管理员。
func (s *Service) Submit(ctx context.Context, employeeID string, in SubmitInput) (*Request, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, fmt.Errorf("employee_id required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	req := &Request{
		ID:             uuid.NewString(),
		EmployeeID:     employeeID,
		OfficerName:    in.OfficerName,
		Designation:    in.Designation,
		RequiredDate:   in.RequiredDate,
		RequiredTime:   in.RequiredTime,
		ReportPlace:    in.ReportPlace,
		PlacesToVisit:  in.PlacesToVisit,
		JourneyPurpose: in.JourneyPurpose,
		ReleaseTime:    in.ReleaseTime,
		Status:         StatusPending,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.dispatch(func(employee *user.User) error {
		return s.notifier.NewRequestSubmitted(req, employee)
	}, req.EmployeeID)

	return req, nil
}

// Approve 管理员审批通过：事务语义见 Repo.Approve。成功后异步通知员工。
func (s *Service) Approve(ctx context.Context, requestID, vehicleID, adminID string) (*Request, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	requestID = strings.TrimSpace(requestID)
	vehicleID = strings.TrimSpace(vehicleID)
	adminID = strings.TrimSpace(adminID)
	if requestID == "" {
		return nil, fmt.Errorf("request_id required")
	}
	if vehicleID == "" {
		return nil, &ValidationError{Fields: []FieldError{{Field: "vehicle_id", Message: "valid vehicle ID is required"}}}
	}
	if adminID == "" {
		return nil, fmt.Errorf("admin_id required")
	}
	if err := s.checkTransition(ctx, requestID, StatusApproved); err != nil {
		return nil, err
	}

	ap := &Approval{
		ID:         uuid.NewString(),
		RequestID:  requestID,
		VehicleID:  vehicleID,
		ApprovedBy: adminID,
		ApprovedAt: time.Now(),
	}
	req, veh, err := s.repo.Approve(ctx, ap, s.approvalCfg.MarkVehicleUnavailable)
	if err != nil {
		return nil, err
	}

	s.dispatch(func(employee *user.User) error {
		return s.notifier.RequestDecided(req, employee, veh)
	}, req.EmployeeID)

	return req, nil
}

// Reject 管理员驳回：原因必填，原样持久化。成功后异步通知员工。
func (s *Service) Reject(ctx context.Context, requestID, reason, adminID string) (*Request, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, fmt.Errorf("request_id required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &ValidationError{Fields: []FieldError{{Field: "rejection_reason", Message: "rejection reason is required"}}}
	}
	if err := s.checkTransition(ctx, requestID, StatusRejected); err != nil {
		return nil, err
	}

	req, err := s.repo.Reject(ctx, requestID, reason)
	if err != nil {
		return nil, err
	}

	s.dispatch(func(employee *user.User) error {
		return s.notifier.RequestDecided(req, employee, nil)
	}, req.EmployeeID)

	return req, nil
}

// ListForEmployee 员工自己的申请单，按创建时间倒序。
func (s *Service) ListForEmployee(ctx context.Context, employeeID string) ([]Detail, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, fmt.Errorf("employee_id required")
	}
	return s.repo.ListForEmployee(ctx, employeeID)
}

// ListAllFilter 管理员列表的查询条件。
type ListAllFilter struct {
	Status   Status
	Page     int
	PageSize int
}

// ListAll 管理员视图：过滤 + 分页 + 同条件总数。
func (s *Service) ListAll(ctx context.Context, f ListAllFilter) ([]Detail, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	if f.Status != "" && f.Status != StatusPending && f.Status != StatusApproved && f.Status != StatusRejected {
		return nil, 0, &ValidationError{Fields: []FieldError{{Field: "status", Message: "invalid status filter"}}}
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 10
	}
	offset := (f.Page - 1) * f.PageSize
	return s.repo.ListAll(ctx, f.Status, offset, f.PageSize)
}

// Get 单个申请单的完整读视图。
func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	d, err := s.repo.FindDetailByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// DashboardStats 看板统计（派生读，不做任何写）。
func (s *Service) DashboardStats(ctx context.Context) (*Stats, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.repo.DashboardStats(ctx, time.Now())
}

// checkTransition 审批前按状态机规则校验流转。这里在内存副本上应用一次流转，
// 拿到干净的不可流转判定；提交时刻的权威判定仍是仓储层对 status 列的
// compare-and-swap，竞态失败方同样收到 ErrNotFoundOrNotPending。
func (s *Service) checkTransition(ctx context.Context, requestID string, to Status) error {
	req, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFoundOrNotPending
		}
		return err
	}
	if err := ApplyTransition(req, to); err != nil {
		return ErrNotFoundOrNotPending
	}
	return nil
}

// dispatch 在独立 goroutine 里执行一次 best-effort 通知：
// 先查出申请单归属员工，再调用回调；任何失败只记日志，不影响主流程。
func (s *Service) dispatch(fn func(employee *user.User) error, employeeID string) {
	if s.notifier == nil {
		return
	}
	go func() {
		// 主请求的 ctx 可能已经结束，这里用独立的超时上下文
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var employee *user.User
		if s.users != nil {
			u, err := s.users.FindByID(ctx, employeeID)
			if err != nil {
				if s.log != nil {
					s.log.Warnf("notification skipped: failed to load employee %s: %v", employeeID, err)
				}
				return
			}
			employee = u
		}

		if err := fn(employee); err != nil && s.log != nil {
			s.log.Warnf("failed to send notification: %v", err)
		}
	}()
}
