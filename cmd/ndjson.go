package cmd

import (
	"encoding/json"
	"io"
	"runtime"
	"strings"
	"time"
)

type ndjsonEvent struct {
	Timestamp  string         `json:"timestamp"`
	Level      string         `json:"level"`
	Event      string         `json:"event"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	Suggestion string         `json:"suggestion,omitempty"`
}

func emitNDJSON(w io.Writer, level, event, message string, details map[string]any, suggestion string) {
	if w == nil {
		return
	}
	e := ndjsonEvent{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Level:      level,
		Event:      event,
		Message:    message,
		Details:    details,
		Suggestion: suggestion,
	}
	buf, err := json.Marshal(e)
	if err != nil {
		fallback, _ := json.Marshal(ndjsonEvent{
			Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
			Level:      "error",
			Event:      "logger_error",
			Message:    "NDJSON 序列化失败",
			Details:    map[string]any{"reason": err.Error()},
			Suggestion: "检查日志字段是否包含无法序列化的数据结构",
		})
		_, _ = w.Write(append(fallback, '\n'))
		return
	}
	_, _ = w.Write(append(buf, '\n'))
}

func suggestionForTopError(errText string) string {
	lower := strings.ToLower(errText)
	switch {
	case strings.Contains(errText, "未找到 rsync"):
		switch runtime.GOOS {
		case "darwin":
			return "先执行 brew install rsync；若已安装但不在 PATH，使用 --rsync-path 指定绝对路径"
		case "windows":
			return "先安装 rsync（scoop install rsync，或在 WSL 中执行）；若 PATH 未生效，使用 --rsync-path"
		default:
			return "先执行 sudo apt-get install rsync（或系统包管理器安装）；也可使用 --rsync-path 指定"
		}
	case strings.Contains(errText, "版本过低"):
		return "升级 rsync 后重试；可用 rsync --version 确认版本"
	case strings.Contains(errText, "读取配置文件失败") || strings.Contains(errText, "未找到配置文件"):
		return "使用 --config 指定配置文件路径，或设置 MIRROR_REMOTE_USER / MIRROR_REMOTE_HOST / MIRROR_PAIRS 环境变量"
	case strings.Contains(errText, "配置无效") || strings.Contains(errText, "格式无效"):
		return "逐项检查 mirrors 列表的 remote_host、remote_path、local_path 字段；参考 syl-mirror.yaml 示例"
	case strings.Contains(errText, "schedule"):
		return "schedule 使用标准 5 段 cron 表达式，例如 \"0 3 * * *\" 表示每天 03:00"
	case strings.Contains(lower, "permission denied"):
		return "检查本地目录写权限与远端 SSH 访问权限"
	default:
		return "根据 details 中的错误信息逐项排查；优先检查路径、依赖和权限"
	}
}

func EmitUnhandledError(w io.Writer, err error) {
	if err == nil {
		return
	}
	emitNDJSON(w, "error", "fatal_error", "程序执行失败", map[string]any{
		"error": err.Error(),
	}, suggestionForTopError(err.Error()))
}
