package request

import "time"

// Status 申请单状态枚举（持久化为字符串）。
type Status string

const (
	StatusPending  Status = "pending"  // 待审批（初始态）
	StatusApproved Status = "approved" // 已通过（终态）
	StatusRejected Status = "rejected" // 已驳回（终态）
)

// Request 是 requests 表的 GORM 模型：员工的用车申请单。
// 申请单只增不删，状态只能由管理员审批动作推进。
type Request struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	EmployeeID string `gorm:"index;size:36;not null" json:"employee_id"` // 归属员工，创建后不可变

	// 出行信息（8 个必填字段）
	OfficerName    string `gorm:"size:128;not null" json:"officer_name"`
	Designation    string `gorm:"size:128;not null" json:"designation"`
	RequiredDate   string `gorm:"size:10;not null" json:"required_date"` // YYYY-MM-DD
	RequiredTime   string `gorm:"size:5;not null" json:"required_time"`  // HH:MM
	ReportPlace    string `gorm:"size:255;not null" json:"report_place"`
	PlacesToVisit  string `gorm:"size:512;not null" json:"places_to_visit"`
	JourneyPurpose string `gorm:"size:512;not null" json:"journey_purpose"`
	ReleaseTime    string `gorm:"size:5;not null" json:"release_time"` // HH:MM

	Status          Status `gorm:"type:varchar(16);index;not null;default:'pending'" json:"status"`
	RejectionReason string `gorm:"size:512" json:"rejection_reason,omitempty"` // 仅 rejected 时有值

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Approval 是 approvals 表的 GORM 模型：申请单通过时写入的永久审计记录，
// 一个申请单至多一条，写入后不再变更或删除。
type Approval struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	RequestID  string    `gorm:"uniqueIndex;size:36;not null" json:"request_id"`
	VehicleID  string    `gorm:"index;size:36;not null" json:"vehicle_id"`
	ApprovedBy string    `gorm:"size:36;not null" json:"approved_by"` // 审批管理员
	ApprovedAt time.Time `gorm:"autoCreateTime" json:"approved_at"`
}

// Detail 是带关联信息的申请单读视图：
// 员工身份 + （已通过时）审批记录 / 车辆 / 审批人。
type Detail struct {
	Request
	EmployeeName   string `json:"employee_name,omitempty"`
	EmployeeEmail  string `json:"employee_email,omitempty"`
	VehicleID      string `json:"vehicle_id,omitempty"`
	VehicleNumber  string `json:"vehicle_number,omitempty"`
	MakeModel      string `json:"make_model,omitempty"`
	DriverName     string `json:"driver_name,omitempty"`
	ApprovedBy     string `json:"approved_by,omitempty"`
	ApprovedByName string `json:"approved_by_name,omitempty"`
}
