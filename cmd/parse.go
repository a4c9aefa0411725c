package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/notation"
	"github.com/jsphweid/jianpu/scale"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	keyIndex  int
	parseJSON bool
)

func init() {
	parseCmd.Flags().IntVarP(&keyIndex, "key", "k", 0, "key index (0-12)")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print tokens as JSON")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse [text|-]",
	Short: "Parses notation text",
	Long:  `Parses notation text, or stdin when the argument is "-" or missing, and prints the tokens.`,
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
		return printTokens(cmd.OutOrStdout(), text, key, parseJSON)
	},
}

func readText(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", errors.Wrap(err, "reading stdin")
	}
	return string(data), nil
}

func printTokens(w io.Writer, text string, key model.Key, asJSON bool) error {
	tokens, total := notation.Parse(text, key)
	if asJSON {
		if tokens == nil {
			tokens = []model.Token{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(model.ParseResponse{Tokens: tokens, TotalDuration: total})
	}

	fmt.Fprintf(w, "key: %v\n", key.Name)
	for _, t := range tokens {
		switch t.Kind {
		case model.KindNote:
			n := t.Note
			fmt.Fprintf(w, "%-8s %-3s pitch=%d index=%d duration=%v\n",
				n.SourceText, n.DisplayLabel, n.AbsolutePitch, n.PitchIndex, n.Duration)
		case model.KindRest:
			fmt.Fprintf(w, "%-8s rest duration=%v\n", t.Rest.SourceText, t.Rest.Duration)
		case model.KindBar:
			fmt.Fprintf(w, "%-8s bar\n", t.Bar.Marker)
		}
	}
	fmt.Fprintf(w, "total: %v\n", total)
	if strings.TrimSpace(text) != "" && len(tokens) == 0 {
		fmt.Fprintln(w, "no tokens recognized")
	}
	return nil
}
