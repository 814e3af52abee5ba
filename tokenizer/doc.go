// Package tokenizer 提供 token 计数与按 token 预算截断文本的能力,
// 用于嵌套流程 carryover 的预算控制。
package tokenizer
