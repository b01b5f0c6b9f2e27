// Package modeselect picks the operating mode once per boot from a button
// gesture.
//
// Released at boot: ESC pass-through straight away. Held at boot: the blue
// LED lights; after the button is let go the LED blinks at the candidate's
// rate. Each short press moves to the next candidate, a long press commits it
// and plays the confirmation pattern.
package modeselect

import (
	"time"

	"escbridge-go/services/config"
	"escbridge-go/services/hal"
	"escbridge-go/services/indicator"
	"escbridge-go/services/input"
	"escbridge-go/types"
	"escbridge-go/x/timex"
)

// ConfirmRepeat is how many blue/red cycles acknowledge a committed mode.
const ConfirmRepeat = 5

// Button is the subset of the classifier the selector needs.
type Button interface {
	Step() types.ButtonEvent
}

type phase uint8

const (
	phStart    phase = iota // waiting for a steady reading
	phHeld                  // held at boot, waiting for the first release
	phChoosing              // cycling candidates
	phDone
)

// Selector is driven one tick at a time by Step, or to completion by Run.
type Selector struct {
	pin     hal.InputPin // raw button, sampled until the first release
	btn     Button
	blink   *indicator.Blinker
	confirm *indicator.Player
	feed    func()
	tk      config.Ticks

	ph        phase
	candidate types.OpMode
	mode      types.OpMode
}

// New builds a selector. pin is the raw button and btn its classifier;
// blink drives the blue LED; confirm plays on blue and red. feed is called
// every tick.
func New(pin hal.InputPin, btn Button, blink *indicator.Blinker, confirm *indicator.Player, feed func(), tk config.Ticks) *Selector {
	if feed == nil {
		feed = func() {}
	}
	return &Selector{pin: pin, btn: btn, blink: blink, confirm: confirm, feed: feed, tk: tk}
}

// Candidate returns the mode currently offered.
func (s *Selector) Candidate() types.OpMode { return s.candidate }

// Step runs one tick. ok is true once a mode has been committed; later calls
// keep returning the same mode.
func (s *Selector) Step() (mode types.OpMode, ok bool) {
	s.feed()
	if s.ph == phDone {
		return s.mode, true
	}

	// Until the boot-time hold ends the raw level decides; the classifier
	// only sees the button once the choice has started.
	switch s.ph {
	case phStart:
		switch input.TripleSample(s.pin) {
		case types.LevelHigh:
			return s.commit(types.ModeESCPassthrough, false)
		case types.LevelLow:
			s.blink.Hold(true)
			s.ph = phHeld
		}

	case phHeld:
		if input.TripleSample(s.pin) == types.LevelHigh {
			s.offer(types.ModeESCPassthrough)
			s.ph = phChoosing
		}

	case phChoosing:
		switch s.btn.Step() {
		case types.ButtonShortRelease:
			s.offer(s.candidate.Next())
		case types.ButtonLongRelease:
			return s.commit(s.candidate, true)
		}
		s.blink.Step()
	}
	return types.ModeUndefined, false
}

// Run steps until a mode is committed, sleeping one tick between steps.
func (s *Selector) Run(sleep func(time.Duration)) types.OpMode {
	if sleep == nil {
		sleep = time.Sleep
	}
	for {
		if m, ok := s.Step(); ok {
			return m
		}
		sleep(s.tk.Tick)
	}
}

func (s *Selector) offer(m types.OpMode) {
	s.candidate = m
	s.blink.Hold(false)
	s.blink.SetPeriod(s.period(m))
}

func (s *Selector) period(m types.OpMode) uint32 {
	switch m {
	case types.ModeReceiverTest:
		return s.tk.BlinkMedium
	case types.ModeServoTest:
		return s.tk.BlinkFast
	default:
		return s.tk.BlinkSlow
	}
}

func (s *Selector) commit(m types.OpMode, acknowledge bool) (types.OpMode, bool) {
	s.blink.Hold(false)
	if acknowledge && s.confirm != nil {
		d := timex.Duration(s.tk.ConfirmPhase, s.tk.Tick)
		s.confirm.Play(indicator.Alternate(d), ConfirmRepeat)
	}
	s.mode, s.ph = m, phDone
	return m, true
}
