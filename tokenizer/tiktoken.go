package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenTokenizer 基于 tiktoken 编码实现 Tokenizer.
type TiktokenTokenizer struct {
	encoding string
	enc      *tiktoken.Tiktoken
	once     sync.Once
	initErr  error
}

// NewTiktoken 创建指定编码的分词器, 常用编码: cl100k_base, o200k_base.
// 编码为空时默认 cl100k_base.
func NewTiktoken(encoding string) *TiktokenTokenizer {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	return &TiktokenTokenizer{encoding: encoding}
}

// init lazily 初始化 tiktoken 编码(可以在第一次使用时下载数据).
func (t *TiktokenTokenizer) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("init tiktoken encoding %s: %w", t.encoding, err)
			return
		}
		t.enc = enc
	})
	return t.initErr
}

func (t *TiktokenTokenizer) CountTokens(text string) (int, error) {
	if err := t.init(); err != nil {
		return 0, err
	}
	return len(t.enc.Encode(text, nil, nil)), nil
}

func (t *TiktokenTokenizer) Encode(text string) ([]int, error) {
	if err := t.init(); err != nil {
		return nil, err
	}
	return t.enc.Encode(text, nil, nil), nil
}

func (t *TiktokenTokenizer) Decode(tokens []int) (string, error) {
	if err := t.init(); err != nil {
		return "", err
	}
	return t.enc.Decode(tokens), nil
}

func (t *TiktokenTokenizer) Name() string {
	return fmt.Sprintf("tiktoken[%s]", t.encoding)
}
