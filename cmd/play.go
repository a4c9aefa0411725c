package cmd

import (
	"fmt"
	"os"

	"github.com/jsphweid/jianpu/midi"
	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/playback"
	"github.com/jsphweid/jianpu/scale"
	"github.com/jsphweid/jianpu/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
)

var (
	tempoBPM int
	outPort  int
	outFile  string
	playKey  int

	playTitle string
	playAlbum string
)

func init() {
	playCmd.Flags().IntVarP(&playKey, "key", "k", 0, "key index (0-12)")
	playCmd.Flags().IntVarP(&tempoBPM, "tempo", "t", 120, "tempo in quarter notes per minute")
	playCmd.Flags().IntVar(&outPort, "port", 0, "MIDI output port")
	playCmd.Flags().StringVarP(&outFile, "out", "o", "", "write a Standard MIDI File instead of playing")
	playCmd.Flags().StringVar(&playTitle, "title", "", "play a saved document instead of text")
	playCmd.Flags().StringVar(&playAlbum, "album", "", "album of the saved document")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play [text|-]",
	Short: "Plays notation text",
	Long:  `Plays notation text on a MIDI output port, or writes it to a MIDI file with --out.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newController(playTitle != "", nil)
		if err != nil {
			return err
		}
		if playTitle != "" {
			if err := c.Load(cmd.Context(), playTitle, playAlbum); err != nil {
				return err
			}
		} else {
			text, err := readText(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := c.SetKey(playKey); err != nil {
				return err
			}
			if err := c.SetContent(0, text); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("tempo") || playTitle == "" {
			if err := c.SetTempo(tempoBPM); err != nil {
				return err
			}
		}

		doc := c.Document()
		var tokens []model.Token
		for _, p := range c.Parsed() {
			tokens = append(tokens, p.Tokens...)
		}
		notes := playback.Schedule(tokens, doc.TempoBPM)
		if len(notes) == 0 {
			return errors.New("nothing to play")
		}

		if outFile != "" {
			return exportFile(outFile, notes, doc.TempoBPM, scale.Fifths(doc.KeyIndex))
		}
		return playOnPort(c, outPort, len(notes))
	},
}

func exportFile(path string, notes []playback.ScheduledNote, tempo, fifths int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", path)
	}
	if err := midi.WriteSchedule(f, notes, tempo, fifths); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

// portSynth sounds notes on a MIDI output port.
type portSynth struct {
	send    func(gomidi.Message) error
	channel uint8
}

func checkPitch(p int) error {
	if p < 0 || p > 127 {
		return errors.Errorf("pitch %d out of MIDI range", p)
	}
	return nil
}

func (s portSynth) NoteOn(p int) error {
	if err := checkPitch(p); err != nil {
		return err
	}
	return s.send(gomidi.NoteOn(s.channel, uint8(p), 100))
}

func (s portSynth) NoteOff(p int) error {
	if err := checkPitch(p); err != nil {
		return err
	}
	return s.send(gomidi.NoteOff(s.channel, uint8(p)))
}

func playOnPort(c *session.Controller, port, count int) error {
	defer gomidi.CloseDriver()
	out, err := gomidi.OutPort(port)
	if err != nil {
		return errors.Wrapf(err, "can't find MIDI output port %d", port)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return errors.Wrap(err, "opening MIDI output")
	}

	c.UseSynth(portSynth{send: send})
	done, err := c.Play()
	if err != nil {
		return err
	}
	fmt.Printf("playing %d notes on %s\n", count, out.String())
	<-done
	return nil
}
