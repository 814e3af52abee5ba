package config

import (
	"fmt"

	"golang.org/x/time/rate"

	"github.com/BaSui01/swarmflow/swarm"
	"github.com/BaSui01/swarmflow/tokenizer"
)

// SessionOptions 将会话相关配置映射为 swarm.Options 的基础部分。
// Registry 与 Responder 由调用方补全。
func (c *Config) SessionOptions() (swarm.Options, error) {
	opts := swarm.Options{
		MaxTurns:    c.Swarm.MaxTurns,
		MaxDuration: c.Swarm.MaxDuration,
		UserActor:   c.Swarm.UserActor,
	}

	if c.Swarm.DefaultAfterWork != "" {
		target, err := ParseTarget(c.Swarm.DefaultAfterWork)
		if err != nil {
			return swarm.Options{}, fmt.Errorf("default_after_work: %w", err)
		}
		opts.DefaultAfterWork = &target
	}

	if c.Swarm.ToolRateLimit > 0 {
		burst := c.Swarm.ToolRateBurst
		if burst <= 0 {
			burst = 1
		}
		opts.ToolRateLimit = rate.NewLimiter(rate.Limit(c.Swarm.ToolRateLimit), burst)
	}

	if c.Swarm.CarryoverMaxTokens > 0 {
		opts.Tokenizer = tokenizer.NewTiktoken(c.Swarm.TokenizerEncoding)
	}

	return opts, nil
}
