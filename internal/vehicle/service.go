package vehicle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 车辆不存在。
	ErrNotFound = errors.New("vehicle not found")
	// ErrDuplicateNumber 车牌号已被其他车辆占用。
	ErrDuplicateNumber = errors.New("vehicle number already exists")
	// ErrInUse 车辆已出现在审批记录中，禁止删除。
	ErrInUse = errors.New("vehicle is referenced by approved requests")
)

// Service 封装车辆登记领域的核心用例。
type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// UpsertInput 新增/更新车辆的入参。
type UpsertInput struct {
	VehicleNumber string
	MakeModel     string
	DriverName    string
	IsAvailable   *bool // nil 表示新增时取默认 true / 更新时保持原值
}

func (in *UpsertInput) normalize() error {
	in.VehicleNumber = strings.TrimSpace(in.VehicleNumber)
	in.MakeModel = strings.TrimSpace(in.MakeModel)
	in.DriverName = strings.TrimSpace(in.DriverName)
	if in.VehicleNumber == "" {
		return fmt.Errorf("vehicle_number required")
	}
	if in.MakeModel == "" {
		return fmt.Errorf("make_model required")
	}
	if in.DriverName == "" {
		return fmt.Errorf("driver_name required")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in UpsertInput) (*Vehicle, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	// 车牌号唯一性按存储原样比较（大小写敏感）
	dup, err := s.repo.CountByNumber(ctx, in.VehicleNumber, "")
	if err != nil {
		return nil, err
	}
	if dup > 0 {
		return nil, ErrDuplicateNumber
	}

	v := &Vehicle{
		ID:            uuid.NewString(),
		VehicleNumber: in.VehicleNumber,
		MakeModel:     in.MakeModel,
		DriverName:    in.DriverName,
		IsAvailable:   true,
	}
	if in.IsAvailable != nil {
		v.IsAvailable = *in.IsAvailable
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpsertInput) (*Vehicle, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	dup, err := s.repo.CountByNumber(ctx, in.VehicleNumber, id)
	if err != nil {
		return nil, err
	}
	if dup > 0 {
		return nil, ErrDuplicateNumber
	}

	v.VehicleNumber = in.VehicleNumber
	v.MakeModel = in.MakeModel
	v.DriverName = in.DriverName
	if in.IsAvailable != nil {
		v.IsAvailable = *in.IsAvailable
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("id required")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	assigned, err := s.repo.CountAssignments(ctx, id)
	if err != nil {
		return err
	}
	if assigned > 0 {
		return ErrInUse
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*Vehicle, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	v, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *Service) List(ctx context.Context, onlyAvailable bool) ([]Vehicle, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, onlyAvailable)
}
