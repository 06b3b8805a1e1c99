// db/db.go
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/clearledger/vigil/api/audit"
	"github.com/clearledger/vigil/api/config"
	logger "github.com/clearledger/vigil/api/logging"
)

var AuditDB *gorm.DB

// InitAuditDB opens the sqlite chain store and migrates the audit table.
// TranslateError is required so a lost sequence race surfaces as
// gorm.ErrDuplicatedKey instead of a driver-specific string.
func InitAuditDB() error {
	path := config.GetString("sqlite.path")
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create audit db directory: %w", err)
		}
	}

	logger.Info("Opening audit chain store", zap.String("path", path))
	var err error
	AuditDB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open audit db: %w", err)
	}

	if err := AuditDB.AutoMigrate(&audit.AuditLogEntry{}); err != nil {
		return fmt.Errorf("failed to migrate audit db: %w", err)
	}

	logger.Info("Audit chain store ready")
	return nil
}

func CloseAuditDB() {
	if AuditDB == nil {
		return
	}
	sqlDB, err := AuditDB.DB()
	if err != nil {
		logger.Error("Error fetching audit db handle", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing audit db", zap.Error(err))
	} else {
		logger.Info("Audit chain store closed successfully")
	}
}

var Neo4jDriver neo4j.Driver

func InitNeo4j() error {
	var err error
	uri := config.GetString("neo4j.uri")
	logger.Info("Connecting to Neo4j at URI", zap.String("uri", uri))
	Neo4jDriver, err = neo4j.NewDriver(
		uri,
		neo4j.BasicAuth(
			config.GetString("neo4j.username"),
			config.GetString("neo4j.password"),
			"",
		),
		func(c *neo4j.Config) {
			c.MaxConnectionLifetime = 30 * time.Minute
			c.MaxConnectionPoolSize = 50
			c.Log = neo4j.ConsoleLogger(neo4j.ERROR)
		},
	)

	if err != nil {
		return fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	// Test the connection
	_, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = Neo4jDriver.VerifyConnectivity()
	if err != nil {
		return fmt.Errorf("failed to connect to Neo4j: %w", err)
	}

	logger.Info("Successfully connected to Neo4j")
	return nil
}

func CloseNeo4j() {
	if Neo4jDriver != nil {
		_, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := Neo4jDriver.Close()
		if err != nil {
			logger.Error("Error closing Neo4j connection", zap.Error(err))
		} else {
			logger.Info("Neo4j connection closed successfully")
		}
	}
}
