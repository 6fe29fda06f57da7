package rsync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"
	"syl-mirror/internal/job"
)

var execCommandContext = exec.CommandContext
var execLookPath = exec.LookPath

// rsync 2.6.9 是各平台普遍自带的最老版本，再往下不保证 --delete 行为一致。
const minVersion = "2.6.9"

const tailLines = 20

type Info struct {
	BinaryPath string
	Version    string
}

type Syncer interface {
	Sync(ctx context.Context, j job.Job) job.Result
}

type RsyncSyncer struct {
	RsyncPath string
	ExtraArgs []string
	Trace     io.Writer
	ErrTrace  io.Writer
	Quiet     bool
}

func NewRsyncSyncer(rsyncPath string, extraArgs []string, trace, errTrace io.Writer, quiet bool) *RsyncSyncer {
	return &RsyncSyncer{
		RsyncPath: rsyncPath,
		ExtraArgs: extraArgs,
		Trace:     trace,
		ErrTrace:  errTrace,
		Quiet:     quiet,
	}
}

func EnsureRsyncAvailable(rsyncPath string) (Info, error) {
	bin := strings.TrimSpace(rsyncPath)
	if bin == "" {
		bin = "rsync"
	}
	resolved, err := execLookPath(bin)
	if err != nil {
		return Info{}, fmt.Errorf("未找到 rsync（%s）。%s；也可使用 --rsync-path 指定路径", bin, installHint(runtime.GOOS))
	}

	ver, err := detectRsyncVersion(resolved)
	if err != nil {
		// 不把版本解析失败当成阻断错误，保证跨平台兼容性。
		return Info{BinaryPath: resolved}, nil
	}

	got, err := goversion.NewVersion(ver)
	if err == nil && got.LessThan(goversion.Must(goversion.NewVersion(minVersion))) {
		return Info{}, fmt.Errorf("rsync 版本过低：%s（至少需要 %s）", ver, minVersion)
	}
	return Info{BinaryPath: resolved, Version: ver}, nil
}

func (r *RsyncSyncer) Sync(ctx context.Context, j job.Job) (res job.Result) {
	res = job.Result{Job: j, ExitCode: -1}
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
	}()

	if err := os.MkdirAll(j.LocalPath, 0o755); err != nil {
		res.Error = fmt.Errorf("创建本地目录失败：%w", err)
		return res
	}
	if err := probeWritable(j.LocalPath); err != nil {
		res.Error = fmt.Errorf("本地目录不可写：%w", err)
		return res
	}

	bin := strings.TrimSpace(r.RsyncPath)
	if bin == "" {
		bin = "rsync"
	}

	args := make([]string, 0, len(r.ExtraArgs)+5)
	args = append(args, "-a", "--delete", "--progress")
	args = append(args, r.ExtraArgs...)
	args = append(args, j.RemoteSpec(), j.LocalPath)

	if r.Trace != nil {
		fmt.Fprintf(r.Trace, "开始同步 %s：%s -> %s\n", j.Label, j.RemoteSpec(), j.LocalPath)
	}

	// rsync 自身的输出默认透传显示，--quiet 时只留尾部摘要。
	tail := newTailBuffer(tailLines)
	var stdout io.Writer = tail
	if r.Trace != nil && !r.Quiet {
		stdout = io.MultiWriter(r.Trace, tail)
	}
	stderr := bytes.NewBuffer(nil)
	var stderrOut io.Writer = stderr
	if r.ErrTrace != nil && !r.Quiet {
		stderrOut = io.MultiWriter(r.ErrTrace, stderr)
	}

	cmd := execCommandContext(ctx, bin, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderrOut

	err := cmd.Run()
	res.StdoutTail = tail.Lines()

	if err == nil {
		res.ExitCode = 0
		if r.Trace != nil {
			fmt.Fprintf(r.Trace, "完成同步 %s（退出码 0，耗时 %s）\n", j.Label, time.Since(start).Round(time.Millisecond))
		}
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		reason := strings.TrimSpace(stderr.String())
		if reason == "" {
			reason = err.Error()
		}
		res.Error = fmt.Errorf("rsync 同步失败（退出码 %d）：%s", res.ExitCode, reason)
	} else {
		res.Error = fmt.Errorf("启动 rsync 失败：%w", err)
	}
	if r.Trace != nil {
		fmt.Fprintf(r.Trace, "完成同步 %s（退出码 %d，耗时 %s）\n", j.Label, res.ExitCode, time.Since(start).Round(time.Millisecond))
	}
	return res
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".syl-mirror-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func detectRsyncVersion(binPath string) (string, error) {
	cmd := execCommandContext(context.Background(), binPath, "--version")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("执行 rsync --version 失败：%w", err)
	}
	line := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	if line == "" {
		return "", fmt.Errorf("读取 rsync 版本失败：输出为空")
	}
	ver, ok := extractVersionToken(line)
	if !ok {
		return "", fmt.Errorf("无法识别 rsync 版本：%s", line)
	}
	return ver, nil
}

// 首行形如 "rsync  version 3.2.7  protocol version 31"。
func extractVersionToken(line string) (string, bool) {
	fields := strings.Fields(line)
	for i := 0; i < len(fields)-1; i++ {
		if fields[i] != "version" {
			continue
		}
		raw := strings.TrimPrefix(fields[i+1], "v")
		parts := strings.Split(raw, ".")
		if len(parts) >= 2 && isDigits(parts[0]) && isDigits(parts[1]) {
			return raw, true
		}
	}
	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

func installHint(goos string) string {
	switch goos {
	case "darwin":
		return "可执行：brew install rsync"
	case "windows":
		return "可执行：scoop install rsync（或在 WSL 中使用系统自带 rsync）"
	default:
		return "可执行：sudo apt-get install rsync（或使用系统包管理器安装）"
	}
}
