package config

import "time"

// DefaultConfig 返回完整默认配置
func DefaultConfig() *Config {
	return &Config{
		Swarm:     DefaultSwarmConfig(),
		Redis:     DefaultRedisConfig(),
		Database:  DefaultDatabaseConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultSwarmConfig 返回默认会话配置
func DefaultSwarmConfig() SwarmConfig {
	return SwarmConfig{
		MaxTurns:          50,
		MaxDuration:       10 * time.Minute,
		UserActor:         "user",
		DefaultAfterWork:  "terminate",
		ToolRateLimit:     0,
		ToolRateBurst:     1,
		TokenizerEncoding: "cl100k_base",
		CheckpointEnabled: false,
		StoreBackend:      "memory",
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		KeyPrefix:    "swarmflow:session:",
		SnapshotTTL:  24 * time.Hour,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "sqlite",
		Host:            "localhost",
		Port:            5432,
		Name:            "swarmflow",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "swarmflow",
		SampleRate:   0.1,
	}
}
