package app

import (
	"context"
	"os"

	"syl-mirror/internal/config"
	"syl-mirror/internal/plan"
	"syl-mirror/internal/rsync"
	"syl-mirror/internal/runner"
)

func Run(opts Options) (Result, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	cfg, err := config.Resolve(opts.ConfigPath)
	if err != nil {
		return Result{}, err
	}
	if opts.RsyncPath != "" {
		cfg.Rsync.Path = opts.RsyncPath
	}

	jobs, err := plan.BuildJobs(cfg)
	if err != nil {
		return Result{}, err
	}

	if len(jobs) == 0 {
		// 空任务列表视为成功，不启动任何外部进程。
		return Result{Failures: make([]Failure, 0)}, nil
	}

	workers := opts.Jobs
	if workers < 1 {
		workers = 1
	}

	s := opts.Syncer
	info := rsync.Info{}
	if s == nil {
		info, err = rsync.EnsureRsyncAvailable(cfg.Rsync.Path)
		if err != nil {
			return Result{}, err
		}
		s = rsync.NewRsyncSyncer(info.BinaryPath, cfg.Rsync.ExtraArgs, stdout, stderr, opts.Quiet)
	}

	result := Result{
		RsyncPath: info.BinaryPath,
		RsyncVer:  info.Version,
		Failures:  make([]Failure, 0),
	}

	summary := runner.Run(context.Background(), workers, jobs, s, opts.FailFast)

	result.Total = summary.Total
	result.SuccessCount = summary.SuccessCount
	result.FailureCount = summary.FailureCount
	result.Results = summary.Results
	for _, r := range summary.Results {
		if r.Error != nil {
			result.Failures = append(result.Failures, Failure{Label: r.Job.Label, Reason: r.Error.Error()})
		}
	}
	return result, nil
}
