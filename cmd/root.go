package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"syl-mirror/internal/app"
	"syl-mirror/internal/config"
	"syl-mirror/internal/runner"
	"syl-mirror/internal/schedule"
)

type mirrorFlags struct {
	configPath string
	jobs       int
	rsyncPath  string
	failFast   bool
	scheduleAt string
	quiet      bool
}

func Execute() error {
	root := NewRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(os.Args[1:])
	return root.Execute()
}

func NewRootCmd(stdout io.Writer, stderr io.Writer) *cobra.Command {
	flags := &mirrorFlags{}
	showVersion := false

	root := &cobra.Command{
		Use:           "syl-mirror",
		Short:         "将远端目录镜像到本地",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMirror(stdout, stderr, flags, &showVersion),
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.CompletionOptions.HiddenDefaultCmd = true
	bindMirrorFlags(root, flags)
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "显示版本信息")

	runCmd := &cobra.Command{
		Use:           "run",
		Short:         "执行全部已配置的镜像任务",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMirror(stdout, stderr, flags, &showVersion),
	}
	root.AddCommand(runCmd)

	versionCmd := &cobra.Command{
		Use:           "version",
		Short:         "显示版本信息",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(stdout)
		},
	}
	root.AddCommand(versionCmd)
	return root
}

func bindMirrorFlags(cmd *cobra.Command, flags *mirrorFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "配置文件路径（默认 "+config.DefaultFileName+"）")
	cmd.PersistentFlags().IntVarP(&flags.jobs, "jobs", "j", 1, "并发任务数（默认顺序执行）")
	cmd.PersistentFlags().StringVar(&flags.rsyncPath, "rsync-path", "", "rsync 可执行文件路径")
	cmd.PersistentFlags().BoolVar(&flags.failFast, "fail-fast", false, "任一任务失败后跳过后续任务")
	cmd.PersistentFlags().StringVar(&flags.scheduleAt, "schedule", "", "cron 表达式，定时执行全部任务")
	cmd.PersistentFlags().BoolVar(&flags.quiet, "quiet", false, "不透传 rsync 自身的进度输出")
}

func runMirror(stdout io.Writer, stderr io.Writer, flags *mirrorFlags, showVersion *bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if showVersion != nil && *showVersion {
			printVersion(stdout)
			return nil
		}
		if len(args) > 0 {
			return fmt.Errorf("不接受位置参数：%s", strings.Join(args, " "))
		}

		pass := func() error {
			return runOnce(stdout, stderr, flags)
		}

		expr := strings.TrimSpace(flags.scheduleAt)
		if expr == "" {
			cfg, err := config.Resolve(flags.configPath)
			if err != nil {
				return err
			}
			expr = strings.TrimSpace(cfg.Schedule)
		}
		if expr == "" {
			return pass()
		}

		d, err := schedule.New(expr, pass, stderr)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "已启动定时同步：%s（下次执行 %s，Ctrl-C 退出）\n",
			expr, d.Next(time.Now()).Format(time.RFC3339))
		d.Start()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		d.Stop()
		fmt.Fprintln(stdout, "定时同步已停止")
		return nil
	}
}

func runOnce(stdout io.Writer, stderr io.Writer, flags *mirrorFlags) error {
	res, err := app.Run(app.Options{
		ConfigPath: flags.configPath,
		Jobs:       flags.jobs,
		RsyncPath:  flags.rsyncPath,
		FailFast:   flags.failFast,
		Quiet:      flags.quiet,
		Stdout:     stdout,
		Stderr:     stderr,
	})
	if err != nil {
		return err
	}

	for _, r := range res.Results {
		if r.Error != nil {
			if runner.IsSkipped(r.Error) {
				fmt.Fprintf(stderr, "skip: %s -> %s\n", r.Job.Label, r.Error.Error())
				continue
			}
			fmt.Fprintf(stderr, "fail: %s -> %s\n", r.Job.Label, r.Error.Error())
			continue
		}
		fmt.Fprintf(stdout, "ok: %s（耗时 %s）\n", r.Job.Label, r.Duration.Round(time.Millisecond))
	}

	fmt.Fprintf(stdout, "完成：成功 %d，失败 %d\n", res.SuccessCount, res.FailureCount)
	if res.FailureCount > 0 {
		return errMirrorFailed
	}
	return nil
}
