package dao

import (
	"errors"
	"time"

	"github.com/cswni/mailstack/common/entity"
	"github.com/cswni/mailstack/common/types/define"
	"gorm.io/gorm"
)

type deployment struct {
	db *gorm.DB
}

func (self *deployment) Create(row *entity.Deployment) error {
	return self.db.Create(row).Error
}

func (self *deployment) Save(row *entity.Deployment) error {
	return self.db.Save(row).Error
}

func (self *deployment) GetByRunId(runId string) (*entity.Deployment, error) {
	row := &entity.Deployment{}
	err := self.db.Where("run_id = ?", runId).First(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (self *deployment) Latest(stackName string) (*entity.Deployment, error) {
	row := &entity.Deployment{}
	err := self.db.Where("stack_name = ?", stackName).Order("id DESC").First(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (self *deployment) History(stackName string, limit int) ([]*entity.Deployment, error) {
	if limit <= 0 {
		limit = 20
	}
	list := make([]*entity.Deployment, 0)
	err := self.db.Where("stack_name = ?", stackName).Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}

// MarkStale flips deployments left running by a crashed process to failed.
func (self *deployment) MarkStale(stackName string, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	return self.db.Model(&entity.Deployment{}).
		Where("stack_name = ? AND status = ? AND started_at < ?", stackName, define.DeployStatusRunning, cutoff).
		Updates(map[string]interface{}{
			"status":  define.DeployStatusFailed,
			"message": "abandoned, process exited before finishing",
		}).Error
}

// Prune keeps the newest keep rows per stack and deletes the rest.
func (self *deployment) Prune(stackName string, keep int) error {
	if keep <= 0 {
		return nil
	}
	ids := make([]int32, 0)
	err := self.db.Model(&entity.Deployment{}).
		Where("stack_name = ?", stackName).
		Order("id DESC").Offset(keep).Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return self.db.Delete(&entity.Deployment{}, ids).Error
}
