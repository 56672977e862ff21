package domain

import (
	"time"

	"gorm.io/gorm"
)

// SysOpr a back-office operator
type SysOpr struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string" form:"id"`
	Realname  string    `json:"realname" form:"realname"`
	Email     string    `json:"email" form:"email"`
	Username  string    `gorm:"uniqueIndex;size:100" json:"username" form:"username"`
	Password  string    `json:"-" form:"password"`
	Level     string    `json:"level" form:"level"`
	Status    string    `json:"status" form:"status"`
	Remark    string    `json:"remark" form:"remark"`
	LastLogin time.Time `json:"last_login" form:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysOpr) TableName() string {
	return "sys_opr"
}

func (o *SysOpr) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// SysOprLog records back-office write actions.
type SysOprLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	OprName   string    `json:"opr_name"`
	OprIp     string    `json:"opr_ip"`
	OptAction string    `json:"opt_action"`
	OptDesc   string    `json:"opt_desc"`
	OptTime   time.Time `gorm:"index" json:"opt_time"`
}

// TableName Specify table name
func (SysOprLog) TableName() string {
	return "sys_opr_log"
}

func (l *SysOprLog) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}
