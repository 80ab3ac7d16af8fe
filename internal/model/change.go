package model

import "time"

// ChangeOperation 用户变更类型。
type ChangeOperation string

const (
	ChangeUpsert ChangeOperation = "upsert"
	ChangeDelete ChangeOperation = "delete"
)

// UserChange 是用户变更的发件箱记录。
//
// 与用户行写入同一事务，由投影任务异步同步到文档库；ProcessedAt 为空表示待处理。
type UserChange struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	UserUID     string          `gorm:"column:user_uid;type:varchar(128);index;not null"`
	Operation   ChangeOperation `gorm:"type:varchar(16);not null"`
	ChangedAt   time.Time       `gorm:"not null"`
	ProcessedAt *time.Time      `gorm:"index"`
	Attempts    int             `gorm:"default:0;not null"`
	LastError   string          `gorm:"type:text"`
}

// AllModels 返回需要自动迁移的全部模型。
func AllModels() []any {
	return []any{
		&User{}, &SavedTask{}, &Task{}, &Bid{}, &Transaction{}, &Rating{}, &Review{}, &UserChange{},
	}
}
