package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zheng/tsel/internal/export"
	"github.com/zheng/tsel/internal/graph"
)

func affectedCmd() *cobra.Command {
	var outputPath string
	var asJSON bool
	var explain bool
	var runPattern bool
	var fromDB bool
	var roots []string
	var strict bool
	var includeChanged bool
	var base string

	cmd := &cobra.Command{
		Use:   "affected <project-path>",
		Short: "输出受变更影响的测试函数",
		Long: `从 stdin 读取 git diff --unified=0 输出 (或用 --base 直接调用 git)，
打印所有受影响的测试函数，每行一个，按字典序排列。没有受影响的测试时不输出任何内容。

示例：
  git diff --unified=0 HEAD~1 | tsel affected .
  tsel affected . --base origin/main
  tsel affected . --base @upstream
  tsel affected . --base HEAD --explain
  tsel affected . --from-db --json < change.diff
  go test ./... -run "$(tsel affected . --base HEAD --run-pattern)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx, args[0])
			if err != nil {
				return err
			}

			text, err := e.readDiff(ctx, base, cmd.InOrStdin())
			if err != nil {
				return err
			}

			sel := e.newSelector(strict, includeChanged)
			fileDiffs, err := sel.ParseDiff(text)
			if err != nil {
				return fmt.Errorf("解析 diff 失败: %w", err)
			}
			// an empty diff never needs the (expensive) analysis
			snap := graph.NewSnapshot()
			if len(fileDiffs) > 0 {
				snap, err = e.loadSnapshot(ctx, fromDB, roots)
				if err != nil {
					return err
				}
			}

			report := sel.Resolve(fileDiffs, snap, snap)
			tests := report.AffectedSet()
			out := cmd.OutOrStdout()

			switch {
			case asJSON:
				return export.EmitJSON(out, report)
			case explain:
				fmt.Fprint(out, report.FormatTree())
				fmt.Fprintln(cmd.ErrOrStderr(), report.Summary())
				return nil
			case runPattern:
				if p := export.RunPattern(tests); p != "" {
					fmt.Fprintln(out, p)
				}
				return nil
			case outputPath != "":
				if err := export.EmitToFile(tests, outputPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "已写入 %d 个测试: %s\n", tests.Len(), outputPath)
				return nil
			}

			if tests.Len() == 0 {
				return nil
			}
			return export.EmitTo(out, tests)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "输出文件路径 (默认输出到 stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出完整报告")
	cmd.Flags().BoolVar(&explain, "explain", false, "显示每个测试受影响的调用链")
	cmd.Flags().BoolVar(&runPattern, "run-pattern", false, "输出 go test -run 可用的正则")
	cmd.Flags().BoolVar(&fromDB, "from-db", false, "使用数据库中已分析的调用图, 不重新分析")
	cmd.Flags().StringSliceVar(&roots, "root", nil, "额外的源码根目录 (可重复)")
	cmd.Flags().BoolVar(&strict, "strict", false, "严格解析 diff, 格式错误时失败")
	cmd.Flags().BoolVar(&includeChanged, "include-changed", false, "同时输出自身被修改的测试")
	cmd.Flags().StringVar(&base, "base", "", "直接运行 git diff 与该版本比较, 而不是读取 stdin (@upstream 表示远程跟踪分支; 未指定且 stdin 无输入时使用配置中的 base)")

	return cmd
}
