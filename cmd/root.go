package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"gosh/core"
	"gosh/core/config"
)

var cfgPath string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gosh",
	Short: "A job-control command shell",
	Long: `gosh is a small Unix command shell with pipelines, I/O redirection,
and job control (fg, bg, wait) built on POSIX process groups.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		shell, err := core.NewShell(configuration)
		if err != nil {
			return err
		}
		defer shell.Close()

		status, err := shell.Run()
		if err != nil {
			return err
		}
		if status != 0 {
			shell.Close()
			os.Exit(status)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
}
