package config

import (
	"fmt"

	"github.com/BaSui01/swarmflow/persistence"
)

// SessionStoreConfig 将应用配置映射为会话存储配置，
// 可直接传给 persistence.NewSessionStore。
func (c *Config) SessionStoreConfig() persistence.StoreConfig {
	return persistence.StoreConfig{
		Type: persistence.StoreType(c.Swarm.StoreBackend),
		Redis: persistence.RedisStoreConfig{
			Addr:         c.Redis.Addr,
			Password:     c.Redis.Password,
			DB:           c.Redis.DB,
			PoolSize:     c.Redis.PoolSize,
			MinIdleConns: c.Redis.MinIdleConns,
			KeyPrefix:    c.Redis.KeyPrefix,
			SnapshotTTL:  c.Redis.SnapshotTTL,
		},
		Database: persistence.DatabaseStoreConfig{
			DSN:             c.Database.DSN(persistence.StoreType(c.Swarm.StoreBackend)),
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
	}
}

// DSN 按后端类型拼接连接串。sqlite 直接使用库名作为文件路径。
func (d DatabaseConfig) DSN(backend persistence.StoreType) string {
	switch backend {
	case persistence.StoreTypeMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, d.Port, d.Name)
	case persistence.StoreTypePostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	case persistence.StoreTypeSQLite:
		return d.Name
	default:
		return ""
	}
}
