package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/jsphweid/jianpu/capture"
	"github.com/jsphweid/jianpu/constants"
	"github.com/jsphweid/jianpu/pitch"
	"github.com/jsphweid/jianpu/session"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

var (
	inPort      int
	recordFor   time.Duration
	recordKey   int
	recordTitle string
	recordAlbum string
	cuePort     int
)

func init() {
	recordCmd.Flags().IntVarP(&recordKey, "key", "k", 0, "key index (0-12)")
	recordCmd.Flags().IntVar(&inPort, "port", 0, "MIDI input port")
	recordCmd.Flags().DurationVar(&recordFor, "for", 0, "stop after this long (0 = until interrupted)")
	recordCmd.Flags().StringVar(&recordTitle, "title", "", "save the recording under this title")
	recordCmd.Flags().StringVar(&recordAlbum, "album", "", "album of the saved recording")
	recordCmd.Flags().IntVar(&cuePort, "cue-port", -1, "play a reference cue in C on this MIDI output port first")
	rootCmd.AddCommand(recordCmd)
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Captures notes from a MIDI keyboard",
	Long: `Captures notes from a MIDI keyboard and prints them as notation text.
Each key is treated as a detected pitch, so the same stability and
refractory rules as microphone capture apply.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newController(recordTitle != "", nil)
		if err != nil {
			return err
		}
		if err := c.SetKey(recordKey); err != nil {
			return err
		}
		if err := c.SetMeta(recordTitle, recordAlbum); err != nil {
			return err
		}
		if recordTitle != "" {
			c.EnableAutosave(constants.AutosaveDelay)
		}

		defer gomidi.CloseDriver()
		s, err := newKeyboardSampler(inPort)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()
		if recordFor > 0 {
			ctx, cancel = context.WithTimeout(ctx, recordFor)
			defer cancel()
		}

		if cuePort >= 0 {
			if err := playCue(ctx, c, cuePort); err != nil {
				s.Close()
				c.Close()
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}

		// sampler failures are logged by the session and end the loop early
		done := c.StartRecording(ctx, s)
		select {
		case <-ctx.Done():
		case <-done:
			if ctx.Err() == nil {
				err = errors.New("recording stopped unexpectedly")
			}
		}
		c.Close()

		text := c.Document().Blocks[c.ActiveBlock()].Content
		fmt.Fprintln(cmd.OutOrStdout(), text)
		if err != nil || recordTitle == "" {
			return err
		}
		for {
			err = c.Save(context.Background())
			if !errors.Is(err, session.ErrSaveInProgress) {
				return err
			}
			time.Sleep(100 * time.Millisecond)
		}
	},
}

// playCue sounds the reference cue before any input is taken. The key is
// switched to C.
func playCue(ctx context.Context, c *session.Controller, port int) error {
	out, err := gomidi.OutPort(port)
	if err != nil {
		return errors.Wrapf(err, "can't find MIDI output port %d", port)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return errors.Wrap(err, "opening MIDI output")
	}
	c.UseSynth(portSynth{send: send})
	logrus.WithField("port", out.String()).Info("playing reference cue")
	return c.PlayCue(ctx)
}

// keyboardSampler reports the most recently pressed key that is still held.
type keyboardSampler struct {
	mu   sync.Mutex
	held []uint8
	stop func()
}

func newKeyboardSampler(port int) (*keyboardSampler, error) {
	in, err := gomidi.InPort(port)
	if err != nil {
		return nil, errors.Wrapf(err, "can't find MIDI input port %d", port)
	}

	s := &keyboardSampler{}
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			s.press(key)
		case msg.GetNoteEnd(&ch, &key):
			s.release(key)
		default:
			// ignore
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "listening to MIDI input")
	}
	s.stop = stop
	logrus.WithField("port", in.String()).Info("recording")
	return s, nil
}

func (s *keyboardSampler) press(key uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = append(s.held, key)
}

func (s *keyboardSampler) release(key uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.held) - 1; i >= 0; i-- {
		if s.held[i] == key {
			s.held = append(s.held[:i], s.held[i+1:]...)
			return
		}
	}
}

func (s *keyboardSampler) Sample() (capture.Detection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	det := capture.Detection{At: time.Now()}
	if n := len(s.held); n > 0 {
		det.Frequency = pitch.MidiToFrequency(float64(s.held[n-1]))
		det.Clarity = 1
	}
	return det, nil
}

func (s *keyboardSampler) Close() error {
	if s.stop != nil {
		s.stop()
	}
	return nil
}
