package cmd

import (
	"github.com/jsphweid/jianpu/identity"
	"github.com/jsphweid/jianpu/playback"
	"github.com/jsphweid/jianpu/session"
)

// newController builds a session for this machine's owner. The store is only
// connected when the command will touch saved documents.
func newController(persistent bool, synth playback.Synth) (*session.Controller, error) {
	if !persistent {
		return session.New(nil, "", synth), nil
	}
	dir, err := identity.DefaultDir()
	if err != nil {
		return nil, err
	}
	owner, err := identity.LoadOrCreate(dir)
	if err != nil {
		return nil, err
	}
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	return session.New(s, owner, synth), nil
}
