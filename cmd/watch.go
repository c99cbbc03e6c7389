package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zheng/tsel/internal/storage"
	"github.com/zheng/tsel/internal/watcher"
)

func watchCmd() *cobra.Command {
	var debounceMs int
	var roots []string

	cmd := &cobra.Command{
		Use:   "watch [project-path]",
		Short: "监控文件变更并自动更新调用图",
		Long: `启动 watch 模式，监控项目中的 Go 文件 (包括 _test.go)。
当检测到文件变更时，自动重新分析并更新调用图数据库，
之后 tsel affected --from-db 可以直接使用最新的调用图。

特性：
  - 自动递归监控所有目录
  - 防抖处理，避免频繁触发分析
  - 忽略隐藏目录、vendor、testdata

示例：
  tsel watch .                  # 监控当前目录
  tsel watch . -d .tsel.db      # 指定数据库路径
  tsel watch . --debounce 1000  # 设置 1 秒防抖延迟`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectPath := "."
			if len(args) > 0 {
				projectPath = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			e, err := setup(ctx, projectPath)
			if err != nil {
				return err
			}
			allRoots := e.roots(roots)

			fmt.Println("执行初始分析...")
			stats, _, err := analyzeAndStore(ctx, e, allRoots)
			if err != nil {
				return fmt.Errorf("初始分析失败: %w", err)
			}
			fmt.Printf("初始分析完成: %d 函数, %d 调用边\n", stats.Decls, stats.Edges)

			fmt.Printf("\n开始监控目录: %s\n", strings.Join(allRoots, ", "))
			fmt.Printf("数据库路径: %s\n", e.dbPath)
			fmt.Printf("防抖延迟: %dms\n", debounceMs)
			fmt.Println("\n按 Ctrl+C 停止...")
			fmt.Println()

			w, err := watcher.New(
				e.projectPath,
				e.dbPath,
				watcher.WithRoots(allRoots...),
				watcher.WithRepoRoot(e.repoRoot),
				watcher.WithDebounceDelay(time.Duration(debounceMs)*time.Millisecond),
				watcher.WithOnAnalysisStart(func(files []string) {
					fmt.Printf("[%s] 检测到 %d 个文件变更，开始分析...\n", time.Now().Format("15:04:05"), len(files))
				}),
				watcher.WithOnAnalysisDone(func(stats storage.Stats, duration time.Duration) {
					fmt.Printf("[%s] 分析完成: %d 函数, %d 调用边 (耗时 %v)\n",
						time.Now().Format("15:04:05"), stats.Decls, stats.Edges, duration.Round(time.Millisecond))
				}),
				watcher.WithOnError(func(err error) {
					fmt.Fprintf(os.Stderr, "[%s] 错误: %v\n", time.Now().Format("15:04:05"), err)
				}),
			)
			if err != nil {
				return fmt.Errorf("创建监控器失败: %w", err)
			}

			w.Start(ctx)
			defer w.Stop()

			<-ctx.Done()
			fmt.Println("\n停止监控...")
			return nil
		},
	}

	cmd.Flags().IntVar(&debounceMs, "debounce", 500, "防抖延迟（毫秒）")
	cmd.Flags().StringSliceVar(&roots, "root", nil, "额外的源码根目录 (可重复)")

	return cmd
}
