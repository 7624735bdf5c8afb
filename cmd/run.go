package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yqhp/vusession/internal/config"
	"yqhp/vusession/internal/pacing"
	"yqhp/vusession/internal/runner"
	"yqhp/vusession/internal/scenario"
	"yqhp/vusession/internal/stats"
	"yqhp/vusession/pkg/logger"
)

var (
	// run 命令的 flags
	runVUs         int
	runIterations  int
	runWorkers     int
	runPages       int
	runJSON        bool
	runThinkTime   string
	runStartSpread string
)

// runCmd 是 run 子命令
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "执行内置的合成场景",
	Example: `  # 使用默认配置
  vusession run

  # 指定 VU 数和迭代次数
  vusession run -u 100 -i 5 --workers 16

  # 从配置文件加载并输出 JSON
  vusession run --config vusession.yaml --json`,
	Args: cobra.NoArgs,
	RunE: runScenario,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runVUs, "vus", "u", 0, "虚拟用户数 (覆盖配置)")
	runCmd.Flags().IntVarP(&runIterations, "iterations", "i", 0, "每个 VU 的迭代次数 (覆盖配置)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "并发执行的 VU 上限 (覆盖配置)")
	runCmd.Flags().IntVar(&runPages, "pages", scenario.DefaultPages, "每次迭代浏览的页数")
	runCmd.Flags().StringVar(&runThinkTime, "think-time", "", "思考时间 (覆盖配置)")
	runCmd.Flags().StringVar(&runStartSpread, "start-spread", "", "VU 启动分散时长 (覆盖配置)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "以 JSON 输出结果")
}

// cmdOverrides 收集显式指定的 flags，转换为配置路径覆盖。
func cmdOverrides(cmd *cobra.Command) map[string]string {
	overrides := make(map[string]string)
	flags := cmd.Flags()

	if flags.Changed("vus") {
		overrides["runner.vus"] = strconv.Itoa(runVUs)
	}
	if flags.Changed("iterations") {
		overrides["runner.iterations"] = strconv.Itoa(runIterations)
	}
	if flags.Changed("workers") {
		overrides["runner.workers"] = strconv.Itoa(runWorkers)
	}
	if flags.Changed("think-time") {
		overrides["pacing.think_time"] = runThinkTime
	}
	if flags.Changed("start-spread") {
		overrides["runner.start_spread"] = runStartSpread
	}
	if debug {
		overrides["logging.level"] = "debug"
	}
	return overrides
}

func runScenario(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewLoader().
		WithConfigPath(cfgFile).
		WithCmdArgs(cmdOverrides(cmd)).
		Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(cfg.Logging.Logger())
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := stats.NewGroupCollector()
	pauser := pacing.NewPauser(nil, cfg.Pacing.MaxDrift)
	sc := scenario.Synthetic(scenario.Params{
		Name:      cfg.Runner.Scenario,
		ThinkTime: cfg.Pacing.ThinkTime,
		Pages:     runPages,
	}, collector, pauser)

	r := runner.New(runner.Options{
		VUs:          cfg.Runner.VUs,
		Iterations:   cfg.Runner.Iterations,
		Workers:      cfg.Runner.Workers,
		StartSpread:  cfg.Runner.StartSpread,
		GracefulStop: cfg.Runner.GracefulStop,
	}, runner.WithCollector(collector))

	summary, runErr := r.Run(ctx, sc)
	if summary != nil {
		if err := printSummary(cmd.OutOrStdout(), summary, runJSON); err != nil {
			return err
		}
	}
	if runErr != nil {
		logger.Error("run finished with errors", zap.Error(runErr))
		return runErr
	}
	return nil
}

// printSummary 输出运行结果。
func printSummary(w io.Writer, s *runner.Summary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintf(w, "scenario: %s\n", s.Scenario)
	fmt.Fprintf(w, "users: %d (failed %d)\n", s.Users, s.FailedUsers)
	fmt.Fprintf(w, "iterations: %d\n", s.Iterations)
	fmt.Fprintf(w, "duration: %s\n\n", s.Duration)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tCOUNT\tFAILED\tMIN\tMEAN\tP95\tMAX")
	for _, g := range s.Groups {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			g.Path, g.Count, g.Failures, g.Min, g.Mean, g.P95, g.Max)
	}
	return tw.Flush()
}
