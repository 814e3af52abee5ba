// Package telemetry 是会话引擎的遥测层: 统一的 tracer scope、
// 会话/轮转/嵌套 span 的属性集，以及 OTel SDK 的初始化与关闭。
// 遥测禁用时使用 noop 实现，不连接任何外部服务。
package telemetry
