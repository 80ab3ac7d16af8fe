package model

import "time"

// Roles a user can hold.
const (
	RoleUser      = "User"
	RoleAdmin     = "Admin"
	RoleModerator = "Moderator"
)

// User 表示平台用户（关系库中的权威记录）。
//
// UID 是身份服务签发的唯一标识，也是三份用户数据之间的关联键。
type User struct {
	ID             uint       `gorm:"primaryKey"`
	UID            string     `gorm:"column:uid;type:varchar(128);uniqueIndex;not null"`
	Username       string     `gorm:"type:varchar(64);not null"`
	PhoneNumber    string     `gorm:"type:varchar(16);uniqueIndex;not null"` // E.164
	NIN            string     `gorm:"column:nin;type:varchar(11)"`
	Email          string     `gorm:"type:varchar(191);index"`
	FirstName      string     `gorm:"type:varchar(64)"`
	LastName       string     `gorm:"type:varchar(64)"`
	BirthDate      string     `gorm:"type:varchar(32)"`
	Gender         string     `gorm:"type:varchar(16)"`
	UserType       string     `gorm:"type:varchar(32)"`
	Role           string     `gorm:"type:varchar(16);default:User"`
	ProfileViews   int        `gorm:"default:0;not null"`
	PasswordHash   string     `gorm:"not null"`
	Profile        string     `gorm:"type:text"`
	Skills         StringList `gorm:"type:text"`
	Ratings        float64    `gorm:"default:0"`
	Reviews        StringList `gorm:"type:text"`
	Portfolio      StringList `gorm:"type:text"`
	ProfilePicture string     `gorm:"type:varchar(512)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SavedTask 记录求助者收藏的任务。
type SavedTask struct {
	UserUID   string `gorm:"column:user_uid;type:varchar(128);primaryKey"`
	TaskID    uint   `gorm:"primaryKey"`
	CreatedAt time.Time
}
