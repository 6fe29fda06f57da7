package cmd

import (
	"fmt"
	"io"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

func versionText() string {
	return fmt.Sprintf("syl-mirror 版本：%s（commit: %s，构建时间: %s）", Version, Commit, BuildTime)
}

func printVersion(w io.Writer) {
	emitNDJSON(w, "info", "version_info", "版本信息", map[string]any{
		"tool":       "syl-mirror",
		"version":    Version,
		"commit":     Commit,
		"build_time": BuildTime,
		"text":       versionText(),
	}, "")
}
