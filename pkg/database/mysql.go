// Package database initializes the datastore connections.
package database

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"docvault-go/pkg/log"
)

var DB *gorm.DB

// InitMySQL connects to the catalog database.
func InitMySQL(dsn string) {
	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("MySQL database connected successfully")
}
