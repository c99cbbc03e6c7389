package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zheng/tsel/internal/analyzer"
	"github.com/zheng/tsel/internal/storage"
)

func analyzeCmd() *cobra.Command {
	var roots []string

	cmd := &cobra.Command{
		Use:   "analyze [project-path]",
		Short: "分析 Go 项目并把调用图写入数据库",
		Long: `对项目 (及 --root 指定的其它源码根目录) 做全量静态分析，
包括测试文件，把函数声明和调用边写入数据库，供 affected --from-db 复用。

示例：
  tsel analyze .
  tsel analyze . --root ../shared -d /tmp/tsel.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectPath := "."
			if len(args) > 0 {
				projectPath = args[0]
			}

			ctx := cmd.Context()
			e, err := setup(ctx, projectPath)
			if err != nil {
				return err
			}
			stderr := cmd.ErrOrStderr()

			fmt.Fprintf(stderr, "分析项目: %s\n", e.projectPath)
			start := time.Now()
			stats, runID, err := analyzeAndStore(ctx, e, e.roots(roots))
			if err != nil {
				return err
			}

			fmt.Fprintf(stderr, "写入数据库: %s\n", e.dbPath)
			fmt.Fprintf(stderr, "完成! %d 个函数, %d 条调用边, %d 个文件 (耗时 %v, run %s)\n",
				stats.Decls, stats.Edges, stats.Files, time.Since(start).Round(time.Millisecond), runID)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&roots, "root", nil, "额外的源码根目录 (可重复)")

	return cmd
}

// analyzeAndStore analyzes roots, replaces the stored graph and records the run
func analyzeAndStore(ctx context.Context, e *env, roots []string) (storage.Stats, string, error) {
	snap, err := analyzer.Analyze(ctx, roots, analyzer.Options{RepoRoot: e.repoRoot})
	if err != nil {
		return storage.Stats{}, "", fmt.Errorf("分析失败: %w", err)
	}

	db, err := storage.Open(e.dbPath)
	if err != nil {
		return storage.Stats{}, "", fmt.Errorf("打开数据库失败: %w", err)
	}
	defer db.Close()

	if err := db.ReplaceSnapshot(snap); err != nil {
		return storage.Stats{}, "", fmt.Errorf("写入数据库失败: %w", err)
	}

	stats, err := db.GetStats()
	if err != nil {
		return storage.Stats{}, "", err
	}
	module, _ := analyzer.ModulePath(e.projectPath)
	runID, err := db.RecordRun(e.repoRoot, module, stats)
	if err != nil {
		return storage.Stats{}, "", fmt.Errorf("记录分析失败: %w", err)
	}
	return stats, runID, nil
}
