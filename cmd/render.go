package cmd

import (
	"encoding/json"

	"github.com/jsphweid/jianpu/constants"
	"github.com/jsphweid/jianpu/document"
	"github.com/jsphweid/jianpu/layout"
	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/scale"
	"github.com/spf13/cobra"
)

var (
	horizontalSpacing float64
	verticalScale     float64
	chordsBlock       bool
)

func init() {
	renderCmd.Flags().IntVarP(&keyIndex, "key", "k", 0, "key index (0-12)")
	renderCmd.Flags().Float64Var(&horizontalSpacing, "spacing", constants.DefaultHorizontalSpacing, "horizontal spacing per step")
	renderCmd.Flags().Float64Var(&verticalScale, "scale", constants.DefaultVerticalScale, "vertical units per staff position")
	renderCmd.Flags().BoolVar(&chordsBlock, "chords", false, "treat the text as a chords block")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render [text|-]",
	Short: "Lays out notation text",
	Long:  `Lays out notation text and prints the canvas and draw primitives as JSON.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		key, err := scale.KeyAt(keyIndex)
		if err != nil {
			return err
		}
		block := model.Block{Type: model.MelodyBlock, Content: text}
		if chordsBlock {
			block.Type = model.ChordsBlock
		}
		drawing := renderBlock(document.ParseBlock(block, key), model.Settings{
			HorizontalSpacing: horizontalSpacing,
			VerticalScale:     verticalScale,
		})
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(drawing)
	},
}

func renderBlock(p document.ParsedBlock, s model.Settings) model.Drawing {
	if p.Type == model.ChordsBlock {
		return layout.RenderChords(p.Glyphs, s.HorizontalSpacing)
	}
	return layout.Render(p.Tokens, s.HorizontalSpacing, s.VerticalScale)
}
