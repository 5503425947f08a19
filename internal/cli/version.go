package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand 创建 version 命令
func NewVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("paperoverlay %s (commit %s, built %s)\n", version, commit, buildDate)
		},
	}
}
