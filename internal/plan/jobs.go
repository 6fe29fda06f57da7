package plan

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"syl-mirror/internal/config"
	"syl-mirror/internal/job"
)

// BuildJobs 把配置展开成有序任务列表；任何字段缺失都在启动任何外部进程之前报错。
func BuildJobs(cfg *config.Config) ([]job.Job, error) {
	if cfg == nil || len(cfg.Mirrors) == 0 {
		return nil, nil
	}

	jobs := make([]job.Job, 0, len(cfg.Mirrors))
	usedLocal := make(map[string]string, len(cfg.Mirrors))

	for i, m := range cfg.Mirrors {
		j := job.Job{
			Label:      strings.TrimSpace(m.Label),
			RemoteUser: strings.TrimSpace(m.RemoteUser),
			RemoteHost: strings.TrimSpace(m.RemoteHost),
			RemotePath: strings.TrimSpace(m.RemotePath),
			LocalPath:  strings.TrimSpace(m.LocalPath),
		}
		if j.RemoteUser == "" {
			j.RemoteUser = strings.TrimSpace(cfg.Defaults.RemoteUser)
		}
		if j.RemoteHost == "" {
			j.RemoteHost = strings.TrimSpace(cfg.Defaults.RemoteHost)
		}

		if j.RemoteHost == "" {
			return nil, fmt.Errorf("配置无效：第 %d 个镜像缺少 remote_host", i+1)
		}
		if j.RemotePath == "" {
			return nil, fmt.Errorf("配置无效：第 %d 个镜像缺少 remote_path", i+1)
		}
		if j.LocalPath == "" {
			return nil, fmt.Errorf("配置无效：第 %d 个镜像（%s）缺少 local_path", i+1, j.RemotePath)
		}

		expanded, err := homedir.Expand(j.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("展开本地路径 %s 失败：%w", j.LocalPath, err)
		}
		j.LocalPath = filepath.Clean(expanded)

		if j.Label == "" {
			j.Label = labelFor(j.RemotePath, i)
		}

		if prev, ok := usedLocal[j.LocalPath]; ok {
			return nil, fmt.Errorf("配置无效：本地路径 %s 被 %s 与 %s 重复使用", j.LocalPath, prev, j.Label)
		}
		usedLocal[j.LocalPath] = j.Label

		jobs = append(jobs, j)
	}
	return jobs, nil
}

func labelFor(remotePath string, idx int) string {
	base := path.Base(strings.TrimRight(remotePath, "/"))
	if base == "" || base == "." || base == "/" {
		return fmt.Sprintf("mirror-%d", idx+1)
	}
	return base
}
