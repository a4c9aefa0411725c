package cmd

import (
	"os"
	"path/filepath"

	"github.com/jsphweid/jianpu/export"
	"github.com/jsphweid/jianpu/session"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	exportTitle string
	exportAlbum string
	exportDir   string
)

func init() {
	exportCmd.Flags().StringVar(&exportTitle, "title", "", "title of the saved document")
	exportCmd.Flags().StringVar(&exportAlbum, "album", "", "album of the saved document")
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", ".", "directory to write the images to")
	_ = exportCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Writes a saved document as SVG images",
	Long:  `Writes every block of a saved document to its own SVG image, named Album_Title_Section_N.svg.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newController(true, nil)
		if err != nil {
			return err
		}
		if err := c.Load(cmd.Context(), exportTitle, exportAlbum); err != nil {
			return err
		}
		return writeSections(c, exportDir)
	},
}

// writeSections renders each block of the session's document into dir.
func writeSections(c *session.Controller, dir string) error {
	doc := c.Document()
	for i, drawing := range c.Layout() {
		path := filepath.Join(dir, export.SectionFileName(doc.Album, doc.Title, i))
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "could not create %s", path)
		}
		err = export.WriteSVG(f, drawing)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errors.Wrapf(err, "could not write %s", path)
		}
		logrus.WithField("path", path).Info("exported section")
	}
	return nil
}
