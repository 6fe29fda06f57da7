package schedule

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidExpr(t *testing.T) {
	_, err := New("not a cron", func() error { return nil }, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "无法解析 schedule 表达式")
}

func TestNextComputesUpcomingRun(t *testing.T) {
	d, err := New("* * * * *", func() error { return nil }, nil)
	require.NoError(t, err)

	now := time.Now()
	next := d.Next(now)
	require.True(t, next.After(now))
	require.LessOrEqual(t, next.Sub(now), time.Minute)
}

func TestNextDailySchedule(t *testing.T) {
	d, err := New("0 3 * * *", func() error { return nil }, nil)
	require.NoError(t, err)

	from := time.Date(2026, 1, 2, 10, 0, 0, 0, time.Local)
	next := d.Next(from)
	require.Equal(t, 3, next.Hour())
	require.Equal(t, 0, next.Minute())
	require.Equal(t, 3, next.Day())
}

func TestDaemonReportsPassFailure(t *testing.T) {
	stderr := bytes.NewBuffer(nil)
	d, err := New("* * * * *", func() error { return errors.New("存在同步失败项") }, stderr)
	require.NoError(t, err)

	// 不真正等待 cron 触发，直接调用注册的任务检查失败输出。
	entries := d.cron.Entries()
	require.Len(t, entries, 1)
	entries[0].Job.Run()
	require.Contains(t, stderr.String(), "定时同步失败：存在同步失败项")
}

func TestExpr(t *testing.T) {
	d, err := New("0 3 * * *", func() error { return nil }, nil)
	require.NoError(t, err)
	require.Equal(t, "0 3 * * *", d.Expr())
}
