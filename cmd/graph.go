package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zheng/tsel/internal/display"
	"github.com/zheng/tsel/internal/graph"
	"github.com/zheng/tsel/internal/storage"
)

func graphCmd() *cobra.Command {
	var projectPath string
	var stats bool
	var callers string
	var depth int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "查看数据库中的反向调用图",
		Long: `显示 analyze 写入的反向调用图 (被调用者 -> 调用者)。

示例：
  tsel graph --stats
  tsel graph --callers Add --depth 0
  tsel graph --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), projectPath)
			if err != nil {
				return err
			}

			db, err := storage.Open(e.dbPath)
			if err != nil {
				return fmt.Errorf("打开数据库失败: %w", err)
			}
			defer db.Close()

			out := cmd.OutOrStdout()

			if stats {
				s, err := db.GetStats()
				if err != nil {
					return err
				}
				run, err := db.LastRun()
				if err != nil {
					return err
				}
				if asJSON {
					return outputJSON(out, map[string]any{"stats": s, "lastRun": run})
				}
				fmt.Fprintf(out, "函数: %d\n调用边: %d\n文件: %d\n包: %d\n", s.Decls, s.Edges, s.Files, s.Packages)
				if run != nil {
					fmt.Fprintf(out, "最近分析: %s (%s, %s)\n", run.CreatedAt.Format("2006-01-02 15:04:05"), run.Root, run.ID)
				}
				return nil
			}

			if callers != "" {
				return printCallers(out, db, callers, depth, asJSON)
			}

			snap, err := db.LoadSnapshot()
			if err != nil {
				return err
			}
			g := graph.Build(snap)
			if asJSON {
				return outputJSON(out, g.AllEdges())
			}
			fmt.Fprint(out, display.FormatCallers(g.Callees(), g.AllEdges()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", ".", "项目路径 (用于读取配置)")
	cmd.Flags().BoolVar(&stats, "stats", false, "只显示统计信息")
	cmd.Flags().StringVar(&callers, "callers", "", "显示匹配函数的调用者")
	cmd.Flags().IntVar(&depth, "depth", 1, "调用者递归深度 (0=无限)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")

	return cmd
}

// printCallers resolves pattern to a single declaration and prints its callers
func printCallers(out io.Writer, db *storage.DB, pattern string, depth int, asJSON bool) error {
	decls, err := db.FindDeclsByPattern(pattern)
	if err != nil {
		return err
	}
	if len(decls) == 0 {
		return fmt.Errorf("未找到函数: %s", pattern)
	}
	target := decls[0]
	if len(decls) > 1 {
		fmt.Fprintf(out, "找到 %d 个匹配, 使用 %s\n", len(decls), target.ID)
	}

	var ids []string
	if depth == 1 {
		ids, err = db.GetDirectCallers(target.ID)
	} else {
		ids, err = db.GetUpstreamCallers(target.ID, depth)
	}
	if err != nil {
		return err
	}
	if asJSON {
		return outputJSON(out, map[string]any{"target": target, "callers": ids})
	}

	fmt.Fprintln(out, "📍 当前函数")
	fmt.Fprintf(out, "%s  %s:%d\n\n", display.ShortFuncName(target.ID), target.File, target.Range.Start)
	fmt.Fprint(out, display.FormatCallers([]string{target.ID}, map[string][]string{target.ID: ids}))
	return nil
}
