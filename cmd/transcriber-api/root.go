package main

import "github.com/spf13/cobra"

var (
	envFile string
)

var rootCmd = &cobra.Command{
	Use:          "transcriber-api",
	Short:        "Accept media uploads and run transcriptions on a worker",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkWorkerCmd)

	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", "", "Path to a .env file loaded before the environment")
}
