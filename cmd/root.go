package cmd

import (
	"github.com/spf13/cobra"
)

var (
	DbPath    string
	Verbosity int
	Quiet     bool
)

// RegisterCommands adds the global flags and all subcommands to the root command
func RegisterCommands(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&DbPath, "db", "d", "", "数据库文件路径 (默认读取配置, 即 <project>/.tsel.db)")
	rootCmd.PersistentFlags().CountVarP(&Verbosity, "verbose", "v", "日志详细程度 (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&Quiet, "quiet", "q", false, "关闭日志输出")

	rootCmd.AddCommand(affectedCmd())
	rootCmd.AddCommand(changedCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(graphCmd())
	rootCmd.AddCommand(watchCmd())
}

// NewRootCmd creates the tsel root command with every subcommand registered
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tsel",
		Short: "Test selection - 根据代码变更选择需要重新运行的测试",
		Long: `tsel 读取 unified diff (git diff --unified=0)，把变更行映射到函数，
再沿反向调用图向上查找，输出所有可能受影响的测试函数。

结果是保守的超集：宁可多跑，不会漏跑静态可见的调用链。`,
		SilenceErrors: true,
		// usage is only useful for argument errors, which are reported before this runs
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SilenceUsage = true
		},
	}
	RegisterCommands(rootCmd)
	return rootCmd
}
