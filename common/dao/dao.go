package dao

import (
	"gorm.io/gorm"
)

var (
	Deployment = &deployment{}

	db *gorm.DB
)

func SetDefault(d *gorm.DB) {
	db = d
	Deployment.db = d
}

func Db() *gorm.DB {
	return db
}
