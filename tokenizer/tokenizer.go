package tokenizer

// Tokenizer 是统一的 token 计数接口.
type Tokenizer interface {
	// CountTokens 返回给定文本的 token 数.
	CountTokens(text string) (int, error)

	// Encode 将文本转换为 token ID 列表.
	Encode(text string) ([]int, error)

	// Decode 将 token ID 转换回文本.
	Decode(tokens []int) (string, error)

	// Name 返回分词器的名称.
	Name() string
}

// Truncate 将文本截断到 maxTokens 个 token 以内。
// 分词器出错时退化为不截断, 原文返回。
func Truncate(t Tokenizer, text string, maxTokens int) string {
	if t == nil || maxTokens <= 0 {
		return text
	}
	tokens, err := t.Encode(text)
	if err != nil || len(tokens) <= maxTokens {
		return text
	}
	out, err := t.Decode(tokens[:maxTokens])
	if err != nil {
		return text
	}
	return out
}
