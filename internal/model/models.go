package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatusCompleted 是分析统计中计为“已完成”的任务状态。
const TaskStatusCompleted = "completed"

// Task 表示需求方发布的任务。
type Task struct {
	ID            uint      `gorm:"primaryKey"`
	UserUID       string    `gorm:"column:user_uid;type:varchar(128);index;not null"` // 发布者
	Title         string    `gorm:"type:varchar(255);not null"`
	Description   string    `gorm:"type:text"`
	Price         float64   `gorm:"default:0"`
	BudgetMin     float64   `gorm:"default:0"`
	BudgetMax     float64   `gorm:"default:0"`
	SkillCategory string    `gorm:"type:varchar(64);index"`
	Location      string    `gorm:"type:varchar(128)"`
	Status        string    `gorm:"type:varchar(32);default:open"` // 自由文本，如 open / completed
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

// Bid 表示服务方对任务的报价。
type Bid struct {
	ID          uint       `gorm:"primaryKey"`
	TaskID      uint       `gorm:"index;not null"`
	UserUID     string     `gorm:"column:user_uid;type:varchar(128);index;not null"`
	Amount      float64    `gorm:"default:0"`
	Message     string     `gorm:"type:text"`
	Attachments StringList `gorm:"type:text"`
	SubmittedAt time.Time
}

// Transaction 表示与任务相关的资金流水。
type Transaction struct {
	ID        uint      `gorm:"primaryKey"`
	UserUID   string    `gorm:"column:user_uid;type:varchar(128);index;not null"`
	TaskID    uint      `gorm:"index;not null"`
	Amount    float64   `gorm:"not null"`
	Type      string    `gorm:"column:transaction_type;type:varchar(32)"`
	Status    string    `gorm:"type:varchar(32)"`
	CreatedAt time.Time
}

// Rating 表示对任务的评分。
type Rating struct {
	ID        uint   `gorm:"primaryKey"`
	UserUID   string `gorm:"column:user_uid;type:varchar(128);index;not null"`
	TaskID    uint   `gorm:"index;not null"`
	Score     int    `gorm:"not null"`
	Comment   string `gorm:"type:text"`
	CreatedAt time.Time
}

// Review 表示附带评分的文字评价。
type Review struct {
	ID          uint   `gorm:"primaryKey"`
	TaskID      uint   `gorm:"index;not null"`
	ReviewerUID string `gorm:"column:reviewer_uid;type:varchar(128);not null"`
	RatingID    uint
	Comment     string `gorm:"type:text"`
	CreatedAt   time.Time
}

// StringList 以 JSON 数组形式存储在单列中。
type StringList []string

// Value 实现 driver.Valuer。
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner。
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan StringList: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan StringList: %w", err)
	}
	*l = out
	return nil
}
