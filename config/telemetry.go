package config

import (
	"github.com/BaSui01/swarmflow/internal/telemetry"
)

// TelemetryOptions 将遥测配置段映射为 telemetry.Config。遥测包与
// 应用配置结构解耦，映射在这里完成。
func (c *Config) TelemetryOptions() telemetry.Config {
	return telemetry.Config{
		Enabled:     c.Telemetry.Enabled,
		Endpoint:    c.Telemetry.OTLPEndpoint,
		ServiceName: c.Telemetry.ServiceName,
		SampleRate:  c.Telemetry.SampleRate,
	}
}
