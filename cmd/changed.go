package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zheng/tsel/internal/changes"
	"github.com/zheng/tsel/internal/graph"
)

func changedCmd() *cobra.Command {
	var asJSON bool
	var fromDB bool
	var roots []string
	var strict bool
	var base string

	cmd := &cobra.Command{
		Use:   "changed <project-path>",
		Short: "输出被 diff 修改的函数",
		Long: `把 diff 中的变更行映射到函数声明，输出被修改的函数 (不做调用图传播)。

示例：
  git diff --unified=0 | tsel changed .
  tsel changed . --base HEAD~1 --json`,
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
			fileDiffs, err := e.newSelector(strict, false).ParseDiff(text)
			if err != nil {
				return fmt.Errorf("解析 diff 失败: %w", err)
			}
			if len(fileDiffs) == 0 {
				return nil
			}

			snap, err := e.loadSnapshot(ctx, fromDB, roots)
			if err != nil {
				return err
			}

			changed := changes.Collect(fileDiffs, snap.Declarations())
			out := cmd.OutOrStdout()

			if asJSON {
				decls := make([]graph.Decl, 0, changed.Len())
				for _, id := range changed.Sorted() {
					if d, ok := snap.Decl(id); ok {
						decls = append(decls, d)
					}
				}
				return outputJSON(out, decls)
			}

			for _, id := range changed.Sorted() {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出函数声明")
	cmd.Flags().BoolVar(&fromDB, "from-db", false, "使用数据库中已分析的调用图, 不重新分析")
	cmd.Flags().StringSliceVar(&roots, "root", nil, "额外的源码根目录 (可重复)")
	cmd.Flags().BoolVar(&strict, "strict", false, "严格解析 diff, 格式错误时失败")
	cmd.Flags().StringVar(&base, "base", "", "直接运行 git diff 与该版本比较, 而不是读取 stdin (@upstream 表示远程跟踪分支; 未指定且 stdin 无输入时使用配置中的 base)")

	return cmd
}
