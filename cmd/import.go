package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jsphweid/jianpu/file"
	"github.com/jsphweid/jianpu/importer"
	"github.com/jsphweid/jianpu/scale"
	"github.com/jsphweid/jianpu/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	forcedKey int
	maxFiles  int
)

func init() {
	importCmd.Flags().IntVarP(&forcedKey, "key", "k", -1, "force a key index instead of detecting it")
	importCmd.Flags().IntVar(&maxFiles, "max", 0, "maximum number of files to import from a directory (0 = all)")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file|dir>",
	Short: "Converts MIDI or MusicXML to notation text",
	Long:  `Converts a MIDI or MusicXML file, or every score file under a directory, to notation text.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var forced *int
		if forcedKey >= 0 {
			forced = &forcedKey
		}
		return run(cmd.OutOrStdout(), args[0], maxFiles, forced)
	},
}

func run(w io.Writer, path string, maxNum int, forced *int) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "could not open %s", path)
	}
	if !info.IsDir() {
		res, err := importFile(path, forced)
		if err != nil {
			return err
		}
		printImport(w, res)
		return nil
	}

	paths, err := file.GatherScorePaths(path, maxNum)
	if err != nil {
		return err
	}
	fileNumMap := file.CreateFileNumMap(paths)
	failed := 0
	for _, id := range util.GetKeys(fileNumMap) {
		p := fileNumMap[id]
		fmt.Fprintf(w, "%d %s\n", id, p)
		res, err := importFile(p, forced)
		if err != nil {
			failed++
			logrus.WithError(err).WithField("file", p).Warn("import failed")
			continue
		}
		printImport(w, res)
	}
	fmt.Fprintf(w, "imported %d of %d files\n", len(paths)-failed, len(paths))
	return nil
}

func importFile(path string, forced *int) (importer.Result, error) {
	score, err := file.ReadScore(path)
	if err != nil {
		return importer.Result{}, err
	}
	res, err := importer.Import(score, forced)
	return res, errors.Wrap(err, path)
}

func printImport(w io.Writer, res importer.Result) {
	fmt.Fprintf(w, "key: %s\n%s\n", scale.MustKeyAt(res.DetectedKeyIndex).Name, res.Text)
}
