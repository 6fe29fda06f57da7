package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"syl-mirror/internal/job"
	"syl-mirror/internal/rsync"
)

var errSkippedByFailFast = errors.New("因前序任务失败而跳过（fail-fast）")

func IsSkipped(err error) bool {
	return errors.Is(err, errSkippedByFailFast)
}

// Run 按输入顺序返回结果；workers 为 1 时严格顺序执行。
// fail-fast 模式下被跳过的任务仍占一个结果位，保证输入输出一一对应。
func Run(ctx context.Context, workers int, tasks []job.Job, s rsync.Syncer, failFast bool) Summary {
	if workers < 1 {
		workers = 1
	}
	if len(tasks) == 0 {
		return Summary{}
	}

	type indexedResult struct {
		idx int
		res job.Result
	}

	workCh := make(chan int)
	resultCh := make(chan indexedResult, len(tasks))
	var failed atomic.Bool
	wg := sync.WaitGroup{}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				if failFast && failed.Load() {
					resultCh <- indexedResult{idx: idx, res: job.Result{
						Job:      tasks[idx],
						ExitCode: -1,
						Error:    errSkippedByFailFast,
					}}
					continue
				}
				res := s.Sync(ctx, tasks[idx])
				if res.Error != nil {
					failed.Store(true)
				}
				resultCh <- indexedResult{idx: idx, res: res}
			}
		}()
	}

	go func() {
		for i := range tasks {
			workCh <- i
		}
		close(workCh)
		wg.Wait()
		close(resultCh)
	}()

	results := make([]job.Result, len(tasks))
	for item := range resultCh {
		results[item.idx] = item.res
	}

	summary := Summary{Total: len(tasks), Results: results}
	for _, r := range results {
		if r.Error != nil {
			summary.FailureCount++
			continue
		}
		summary.SuccessCount++
	}
	return summary
}
