package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sheetctl %s\n", buildinfo.Version)
		fmt.Fprintf(out, "Git Commit: %s\n", buildinfo.Commit)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
