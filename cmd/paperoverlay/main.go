package main

import (
	"fmt"
	"os"

	"github.com/nerdneilsfield/go-paper-overlay/internal/cli"
)

// 版本信息，由构建时的 ldflags 注入
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	rootCmd := cli.NewRootCommand(Version, Commit, BuildDate)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
