package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	// Version 是当前版本号
	Version = "0.1.0"
)

var (
	// 全局配置
	cfgFile string
	debug   bool
)

// rootCmd 是根命令
var rootCmd = &cobra.Command{
	Use:   "vusession",
	Short: "虚拟用户会话压测工具",
	Long: `vusession 驱动大量并发虚拟用户执行内置工作流，
每个虚拟用户持有一个不可变会话，并在结束时输出按分组聚合的耗时统计。`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "启用调试日志")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("vusession version {{.Version}}\n")
}
