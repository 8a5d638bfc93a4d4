package vehicle

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Vehicle{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// 审批表归 request 包所有；这里只需要 vehicle_id 列即可覆盖删除保护
	if err := db.Exec("CREATE TABLE approvals (id TEXT PRIMARY KEY, request_id TEXT, vehicle_id TEXT)").Error; err != nil {
		t.Fatalf("create approvals table: %v", err)
	}
	return NewService(NewRepo(db)), db
}

func TestCreateDefaultsAndDuplicateNumber(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, UpsertInput{VehicleNumber: "CAB-1001", MakeModel: "Toyota Hiace", DriverName: "Carol"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !v.IsAvailable {
		t.Fatalf("new vehicle must default to available")
	}
	if v.ID == "" {
		t.Fatalf("expected generated id")
	}

	if _, err := svc.Create(ctx, UpsertInput{VehicleNumber: "CAB-1001", MakeModel: "Nissan Caravan", DriverName: "Dan"}); !errors.Is(err, ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}

	unavailable := false
	v2, err := svc.Create(ctx, UpsertInput{VehicleNumber: "CAB-1002", MakeModel: "Nissan Caravan", DriverName: "Dan", IsAvailable: &unavailable})
	if err != nil {
		t.Fatalf("Create with explicit availability: %v", err)
	}
	if v2.IsAvailable {
		t.Fatalf("explicit is_available=false must stick")
	}
}

func TestCreateRequiresFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []UpsertInput{
		{VehicleNumber: " ", MakeModel: "m", DriverName: "d"},
		{VehicleNumber: "CAB-1", MakeModel: "", DriverName: "d"},
		{VehicleNumber: "CAB-1", MakeModel: "m", DriverName: "  "},
	}
	for i, in := range cases {
		if _, err := svc.Create(ctx, in); err == nil {
			t.Fatalf("case %d: expected validation failure", i)
		}
	}
}

func TestUpdateVehicle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, UpsertInput{VehicleNumber: "CAB-2001", MakeModel: "Toyota Hiace", DriverName: "Carol"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, UpsertInput{VehicleNumber: "CAB-2002", MakeModel: "Nissan Caravan", DriverName: "Dan"}); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	// 撞上另一辆车的车牌号
	if _, err := svc.Update(ctx, a.ID, UpsertInput{VehicleNumber: "CAB-2002", MakeModel: "Toyota Hiace", DriverName: "Carol"}); !errors.Is(err, ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}

	// 保留自己的车牌号不算冲突
	unavailable := false
	updated, err := svc.Update(ctx, a.ID, UpsertInput{VehicleNumber: "CAB-2001", MakeModel: "Toyota Coaster", DriverName: "Eve", IsAvailable: &unavailable})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.MakeModel != "Toyota Coaster" || updated.DriverName != "Eve" || updated.IsAvailable {
		t.Fatalf("update not applied: %+v", updated)
	}

	got, err := svc.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.IsAvailable {
		t.Fatalf("is_available=false must persist")
	}

	if _, err := svc.Update(ctx, uuid.NewString(), UpsertInput{VehicleNumber: "CAB-2099", MakeModel: "m", DriverName: "d"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBlockedWhenReferenced(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, UpsertInput{VehicleNumber: "CAB-3001", MakeModel: "Toyota Hiace", DriverName: "Carol"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := db.Exec("INSERT INTO approvals (id, request_id, vehicle_id) VALUES (?, ?, ?)",
		uuid.NewString(), uuid.NewString(), v.ID).Error; err != nil {
		t.Fatalf("seed approval: %v", err)
	}

	if err := svc.Delete(ctx, v.ID); !errors.Is(err, ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
	if _, err := svc.Get(ctx, v.ID); err != nil {
		t.Fatalf("vehicle must survive blocked delete: %v", err)
	}
}

func TestDeleteUnreferenced(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, UpsertInput{VehicleNumber: "CAB-4001", MakeModel: "Toyota Hiace", DriverName: "Carol"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, v.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := svc.Delete(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrderingAndAvailabilityFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	unavailable := false
	if _, err := svc.Create(ctx, UpsertInput{VehicleNumber: "CAB-5003", MakeModel: "m", DriverName: "d", IsAvailable: &unavailable}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, UpsertInput{VehicleNumber: "CAB-5001", MakeModel: "m", DriverName: "d"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, UpsertInput{VehicleNumber: "CAB-5002", MakeModel: "m", DriverName: "d"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 vehicles, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].VehicleNumber > all[i].VehicleNumber {
			t.Fatalf("list not ordered by vehicle number: %s > %s", all[i-1].VehicleNumber, all[i].VehicleNumber)
		}
	}

	available, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("List available: %v", err)
	}
	if len(available) != 2 {
		t.Fatalf("expected 2 available vehicles, got %d", len(available))
	}
	for _, v := range available {
		if !v.IsAvailable {
			t.Fatalf("unavailable vehicle leaked into available list: %+v", v)
		}
	}
}
