// =============================================================================
// 📦 SwarmFlow 配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("SWARMFLOW").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是 SwarmFlow 的完整配置结构
type Config struct {
	// Swarm 会话默认配置
	Swarm SwarmConfig `yaml:"swarm" env:"SWARM"`

	// Redis 会话存储配置
	Redis RedisConfig `yaml:"redis" env:"REDIS"`

	// Database 数据库配置
	Database DatabaseConfig `yaml:"database" env:"DATABASE"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// SwarmConfig 会话默认配置
type SwarmConfig struct {
	// 最大轮次，0 表示不限制
	MaxTurns int `yaml:"max_turns" env:"MAX_TURNS"`
	// 最长运行时间，0 表示不限制
	MaxDuration time.Duration `yaml:"max_duration" env:"MAX_DURATION"`
	// 用户消息归属的发言者名称
	UserActor string `yaml:"user_actor" env:"USER_ACTOR"`
	// 默认 after-work 策略: terminate, stay, revert_to_initiator, delegate_to_selector
	DefaultAfterWork string `yaml:"default_after_work" env:"DEFAULT_AFTER_WORK"`
	// 工具调用速率限制（每秒），0 表示不限制
	ToolRateLimit float64 `yaml:"tool_rate_limit" env:"TOOL_RATE_LIMIT"`
	// 工具调用速率突发量
	ToolRateBurst int `yaml:"tool_rate_burst" env:"TOOL_RATE_BURST"`
	// 嵌套 carryover 的 token 预算，0 表示不截断
	CarryoverMaxTokens int `yaml:"carryover_max_tokens" env:"CARRYOVER_MAX_TOKENS"`
	// carryover token 计数使用的编码
	TokenizerEncoding string `yaml:"tokenizer_encoding" env:"TOKENIZER_ENCODING"`
	// 每轮结束后是否写入会话快照
	CheckpointEnabled bool `yaml:"checkpoint_enabled" env:"CHECKPOINT_ENABLED"`
	// 会话存储后端: memory, redis, sqlite, mysql, postgres
	StoreBackend string `yaml:"store_backend" env:"STORE_BACKEND"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 地址
	Addr string `yaml:"addr" env:"ADDR"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库编号
	DB int `yaml:"db" env:"DB"`
	// 连接池大小
	PoolSize int `yaml:"pool_size" env:"POOL_SIZE"`
	// 最小空闲连接
	MinIdleConns int `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
	// 键前缀
	KeyPrefix string `yaml:"key_prefix" env:"KEY_PREFIX"`
	// 快照过期时间，0 表示不过期
	SnapshotTTL time.Duration `yaml:"snapshot_ttl" env:"SNAPSHOT_TTL"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// 驱动类型: postgres, mysql, sqlite
	Driver string `yaml:"driver" env:"DRIVER"`
	// 主机
	Host string `yaml:"host" env:"HOST"`
	// 端口
	Port int `yaml:"port" env:"PORT"`
	// 用户名
	User string `yaml:"user" env:"USER"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库名
	Name string `yaml:"name" env:"NAME"`
	// SSL 模式
	SSLMode string `yaml:"ssl_mode" env:"SSL_MODE"`
	// 最大连接数
	MaxOpenConns int `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	// 最大空闲连接
	MaxIdleConns int `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	// 连接最大生命周期
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// 服务名称
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// =============================================================================
// 🔧 配置加载器
// =============================================================================

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "SWARMFLOW",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath 设置配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator 添加配置验证器
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 加载配置
// 优先级: 默认值 → YAML 文件 → 环境变量
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile 从 YAML 文件加载配置
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件不存在，使用默认值
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// loadFromEnv 从环境变量加载配置
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv 递归设置结构体字段
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// 特殊处理 time.Duration
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// 支持逗号分隔的字符串切片
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad 加载配置，失败时 panic
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromEnv 仅从环境变量加载配置
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	if c.Swarm.MaxTurns < 0 {
		errs = append(errs, "max_turns must not be negative")
	}
	if c.Swarm.ToolRateLimit < 0 {
		errs = append(errs, "tool_rate_limit must not be negative")
	}
	switch c.Swarm.DefaultAfterWork {
	case "", "terminate", "stay", "revert_to_initiator", "delegate_to_selector":
	default:
		errs = append(errs, fmt.Sprintf("unknown default_after_work %q", c.Swarm.DefaultAfterWork))
	}
	switch c.Swarm.StoreBackend {
	case "", "memory", "redis", "sqlite", "mysql", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("unknown store_backend %q", c.Swarm.StoreBackend))
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	if c.Telemetry.Enabled && c.Telemetry.OTLPEndpoint == "" {
		errs = append(errs, "telemetry enabled but otlp_endpoint is empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
