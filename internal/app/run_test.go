package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"syl-mirror/internal/job"
)

type fakeSyncer struct {
	calls    int32
	failList map[string]bool
}

func (f *fakeSyncer) Sync(ctx context.Context, j job.Job) job.Result {
	atomic.AddInt32(&f.calls, 1)
	if f.failList[j.Label] {
		return job.Result{Job: j, ExitCode: 12, Error: fmt.Errorf("同步失败")}
	}
	return job.Result{Job: j, ExitCode: 0}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "syl-mirror.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunAllSuccess(t *testing.T) {
	path := writeConfig(t, `
defaults:
  remote_user: alice
  remote_host: h
mirrors:
  - remote_path: /home/alice/.m2/
    local_path: /data/m2
  - remote_path: /home/alice/.ivy2/
    local_path: /data/ivy2
`)

	s := &fakeSyncer{}
	res, err := Run(Options{ConfigPath: path, Syncer: s})
	require.NoError(t, err)
	require.Equal(t, 2, res.Total)
	require.Equal(t, 2, res.SuccessCount)
	require.Equal(t, 0, res.FailureCount)
	require.Empty(t, res.Failures)
	require.Equal(t, int32(2), s.calls)
	require.Equal(t, ".m2", res.Results[0].Job.Label)
	require.Equal(t, ".ivy2", res.Results[1].Job.Label)
}

func TestRunRecordsFailureAndContinues(t *testing.T) {
	path := writeConfig(t, `
defaults:
  remote_host: h
mirrors:
  - remote_path: /r/.m2/
    local_path: /data/m2
  - remote_path: /r/.ivy2/
    local_path: /data/ivy2
`)

	s := &fakeSyncer{failList: map[string]bool{".m2": true}}
	res, err := Run(Options{ConfigPath: path, Syncer: s})
	require.NoError(t, err)
	require.Equal(t, 1, res.SuccessCount)
	require.Equal(t, 1, res.FailureCount)
	require.Len(t, res.Failures, 1)
	require.Equal(t, ".m2", res.Failures[0].Label)
	require.Equal(t, int32(2), s.calls)
}

func TestRunEmptyMirrorList(t *testing.T) {
	path := writeConfig(t, "mirrors: []\n")

	s := &fakeSyncer{}
	res, err := Run(Options{ConfigPath: path, Syncer: s})
	require.NoError(t, err)
	require.Equal(t, 0, res.Total)
	require.Equal(t, 0, res.FailureCount)
	require.Equal(t, int32(0), s.calls)
}

func TestRunConfigErrorBeforeAnyJob(t *testing.T) {
	path := writeConfig(t, `
defaults:
  remote_host: h
mirrors:
  - remote_path: /r/.m2/
`)

	s := &fakeSyncer{}
	_, err := Run(Options{ConfigPath: path, Syncer: s})
	require.Error(t, err)
	require.Contains(t, err.Error(), "local_path")
	require.Equal(t, int32(0), s.calls)
}

func TestRunMissingConfig(t *testing.T) {
	_, err := Run(Options{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml"), Syncer: &fakeSyncer{}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "读取配置文件失败")
}

func TestRunWiresOutputWriters(t *testing.T) {
	tmp := t.TempDir()
	fake := filepath.Join(tmp, "fake-rsync.sh")
	script := "#!/bin/sh\nif [ \"$1\" = \"--version\" ]; then echo 'rsync  version 3.2.7  protocol version 31'; exit 0; fi\necho 'sending incremental file list'\necho 'rsync error: connection refused' 1>&2\nexit 23\n"
	require.NoError(t, os.WriteFile(fake, []byte(script), 0o755))

	path := writeConfig(t, `
defaults:
  remote_host: h
mirrors:
  - remote_path: /r/.m2/
    local_path: `+filepath.Join(tmp, "m2")+`
rsync:
  path: `+fake+`
`)

	stdout := bytes.NewBuffer(nil)
	stderr := bytes.NewBuffer(nil)
	res, err := Run(Options{ConfigPath: path, Stdout: stdout, Stderr: stderr})
	require.NoError(t, err)
	require.Equal(t, 1, res.FailureCount)
	require.Contains(t, stdout.String(), "sending incremental file list")
	require.Contains(t, stderr.String(), "rsync error: connection refused")
}

func TestRunResultsStayInConfigOrder(t *testing.T) {
	path := writeConfig(t, `
defaults:
  remote_host: h
mirrors:
  - remote_path: /r/c/
    local_path: /data/c
  - remote_path: /r/a/
    local_path: /data/a
  - remote_path: /r/b/
    local_path: /data/b
`)

	s := &fakeSyncer{}
	res, err := Run(Options{ConfigPath: path, Jobs: 3, Syncer: s})
	require.NoError(t, err)
	require.Len(t, res.Results, 3)
	require.Equal(t, "c", res.Results[0].Job.Label)
	require.Equal(t, "a", res.Results[1].Job.Label)
	require.Equal(t, "b", res.Results[2].Job.Label)
}
