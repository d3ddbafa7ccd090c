package mysql

import (
	"errors"
	"fmt"

	"TikTokFactCheck/internal/config"
	"TikTokFactCheck/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrateDSN 組出 golang-migrate 使用的連線字串
func MigrateDSN(dbCfg config.DatabaseConfig) string {
	return "mysql://" + DSN(dbCfg) + "&multiStatements=true"
}

// RunMigrations 將資料庫結構套用到最新版本
func RunMigrations(dbCfg config.DatabaseConfig, log logger.Logger) error {
	if log == nil {
		log = logger.NewNop()
	}
	migrationPath := dbCfg.MigrationPath
	if migrationPath == "" {
		migrationPath = "file://scripts/migrate/mysql"
	}
	log.Info("[Migrate] 準備執行資料庫遷移", logger.String("source", migrationPath), logger.String("db", dbCfg.DBName))

	m, err := migrate.New(migrationPath, MigrateDSN(dbCfg))
	if err != nil {
		return fmt.Errorf("建立遷移實例失敗: %w", err)
	}
	defer m.Close()

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("獲取資料庫遷移版本失敗: %w", err)
	}
	if dirty {
		return fmt.Errorf("資料庫處於 dirty 狀態 (版本 %d)，遷移失敗", currentVersion)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("[Migrate] 資料庫結構已是最新，無需遷移")
	case err != nil:
		return fmt.Errorf("執行資料庫遷移 (m.Up) 失敗: %w", err)
	default:
		newVersion, _, _ := m.Version()
		log.Info("[Migrate] 資料庫遷移成功完成", logger.Int("version", int(newVersion)))
	}
	return nil
}
