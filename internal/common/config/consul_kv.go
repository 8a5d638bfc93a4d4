package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/consul/api"
)

// LoadConfigFromConsulKV 从 Consul KV 读取一份完整配置并解析。
// key 对应的 value 必须是与 Config 同构的 JSON；只做一次性读取，
// 不做动态 watch，配置变更靠重启生效。
func LoadConfigFromConsulKV(consul ConsulConfig, key string) (*Config, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("consul kv key is empty")
	}

	client, err := api.NewClient(&api.Config{
		Address: fmt.Sprintf("%s:%d", consul.Host, consul.Port),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	pair, _, err := client.KV().Get(key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get consul kv key=%s: %w", key, err)
	}
	if pair == nil || len(pair.Value) == 0 {
		return nil, fmt.Errorf("consul kv key=%s is empty or not found", key)
	}

	cfg, err := parseConfig(pair.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse consul kv config key=%s: %w", key, err)
	}
	return cfg, nil
}
