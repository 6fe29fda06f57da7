package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultFileName = "syl-mirror.yaml"

// matches $(VAR_NAME)
var envPattern = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)\)`)

func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		return os.Getenv(envPattern.FindStringSubmatch(m)[1])
	})
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败：%w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败：%w", path, err)
	}
	return &cfg, nil
}

// Resolve 按优先级取配置：显式路径 > 工作目录下的默认文件 > 环境变量。
func Resolve(path string) (*Config, error) {
	if p := strings.TrimSpace(path); p != "" {
		return Load(p)
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		return Load(DefaultFileName)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	pairs := strings.TrimSpace(os.Getenv("MIRROR_PAIRS"))
	if pairs == "" {
		return nil, fmt.Errorf("未找到配置文件 %s，且环境变量 MIRROR_PAIRS 未设置", DefaultFileName)
	}

	cfg := &Config{
		Defaults: Defaults{
			RemoteUser: strings.TrimSpace(os.Getenv("MIRROR_REMOTE_USER")),
			RemoteHost: strings.TrimSpace(os.Getenv("MIRROR_REMOTE_HOST")),
		},
	}
	for _, raw := range strings.Split(pairs, ",") {
		pair := strings.TrimSpace(raw)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			return nil, fmt.Errorf("MIRROR_PAIRS 格式无效：%q（应为 remote_path:local_path）", pair)
		}
		cfg.Mirrors = append(cfg.Mirrors, Mirror{
			RemotePath: strings.TrimSpace(parts[0]),
			LocalPath:  strings.TrimSpace(parts[1]),
		})
	}
	if len(cfg.Mirrors) == 0 {
		return nil, fmt.Errorf("MIRROR_PAIRS 未包含任何有效的 remote_path:local_path 对")
	}
	return cfg, nil
}
