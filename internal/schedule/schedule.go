package schedule

import (
	"fmt"
	"io"
	"time"

	"github.com/robfig/cron/v3"
)

// Daemon 按 cron 表达式周期性地执行一轮完整的镜像任务。
type Daemon struct {
	cron *cron.Cron
	spec cron.Schedule
	expr string
}

func New(expr string, pass func() error, stderr io.Writer) (*Daemon, error) {
	spec, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("无法解析 schedule 表达式 %q：%w", expr, err)
	}

	c := cron.New()
	c.Schedule(spec, cron.FuncJob(func() {
		if err := pass(); err != nil && stderr != nil {
			fmt.Fprintf(stderr, "定时同步失败：%s\n", err)
		}
	}))
	return &Daemon{cron: c, spec: spec, expr: expr}, nil
}

func (d *Daemon) Start() {
	d.cron.Start()
}

// Stop 停止调度并等待进行中的一轮结束。
func (d *Daemon) Stop() {
	<-d.cron.Stop().Done()
}

func (d *Daemon) Next(from time.Time) time.Time {
	return d.spec.Next(from)
}

func (d *Daemon) Expr() string {
	return d.expr
}
