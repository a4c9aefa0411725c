package cmd

import (
	"github.com/jsphweid/jianpu/constants"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "jianpu",
	Short: "Numbered musical notation engine",
	Long: `jianpu parses, lays out, imports, records and plays melodies written in
numbered musical notation (1-7 for scale degrees, 0 for rests).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func setupLogging() {
	level := logrus.InfoLevel
	if l, err := logrus.ParseLevel(constants.GetLogLevel()); err == nil {
		level = l
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
