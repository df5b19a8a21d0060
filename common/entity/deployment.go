package entity

import (
	"time"

	"github.com/cswni/mailstack/common/accessor"
	"gorm.io/datatypes"
)

type Deployment struct {
	ID         int32                                             `gorm:"column:id;primaryKey;autoIncrement:true" json:"id"`
	RunID      string                                            `gorm:"column:run_id;uniqueIndex" json:"runId"`
	StackName  string                                            `gorm:"column:stack_name;index" json:"stackName"`
	ConfigHash string                                            `gorm:"column:config_hash" json:"configHash"`
	StackHash  string                                            `gorm:"column:stack_hash" json:"stackHash"`
	Status     string                                            `gorm:"column:status" json:"status"`
	Step       string                                            `gorm:"column:step" json:"step"`
	Message    string                                            `gorm:"column:message" json:"message"`
	Images     datatypes.JSONSlice[accessor.DeploymentImageOption] `gorm:"column:images" json:"images"`
	Report     *accessor.DeploymentReportOption                  `gorm:"column:report;serializer:json" json:"report"`
	StartedAt  time.Time                                         `gorm:"column:started_at" json:"startedAt"`
	FinishedAt *time.Time                                        `gorm:"column:finished_at" json:"finishedAt"`
}

func (*Deployment) TableName() string {
	return "deployment"
}
