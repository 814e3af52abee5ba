// Package config 提供 SwarmFlow 的统一配置加载：
// 默认值 → YAML 文件 → 环境变量，以及基于 YAML 的 swarm 声明式定义。
package config
