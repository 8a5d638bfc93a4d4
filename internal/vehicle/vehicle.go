package vehicle

import "time"

// Vehicle 是 vehicles 表的 GORM 模型。
// IsAvailable 仅表示“可被分配”，审批通过默认不会翻转它（见审批配置）。
type Vehicle struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	VehicleNumber string    `gorm:"uniqueIndex;size:32;not null" json:"vehicle_number"`
	MakeModel     string    `gorm:"size:128;not null" json:"make_model"`
	DriverName    string    `gorm:"size:128;not null" json:"driver_name"`
	IsAvailable   bool      `gorm:"not null;default:true" json:"is_available"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
