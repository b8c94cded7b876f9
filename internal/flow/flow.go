// Package flow is the screen state machine of the interactive client.
package flow

import (
	"errors"
	"fmt"
)

type Screen int

const (
	Loading Screen = iota
	Landing
	Onboarding
	Commitment
	Auth
	Payment
	Dashboard
)

var screenNames = map[Screen]string{
	Loading:    "loading",
	Landing:    "landing",
	Onboarding: "onboarding",
	Commitment: "commitment",
	Auth:       "auth",
	Payment:    "payment",
	Dashboard:  "dashboard",
}

func (s Screen) String() string {
	if n, ok := screenNames[s]; ok {
		return n
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

type Event int

const (
	Start Event = iota + 1
	OnboardingComplete
	Confirm
	SignedUp
	SignedInPaid
	SignedInUnpaid
	SignedInNoProfile
	PaymentConfirmed
	BackToAuth
	ShowPayment
	Logout
	SessionEnded
)

var eventNames = map[Event]string{
	Start:              "start",
	OnboardingComplete: "onboarding-complete",
	Confirm:            "confirm",
	SignedUp:           "signed-up",
	SignedInPaid:       "signed-in-paid",
	SignedInUnpaid:     "signed-in-unpaid",
	SignedInNoProfile:  "signed-in-no-profile",
	PaymentConfirmed:   "payment-confirmed",
	BackToAuth:         "back-to-auth",
	ShowPayment:        "show-payment",
	Logout:             "logout",
	SessionEnded:       "session-ended",
}

func (e Event) String() string {
	if n, ok := eventNames[e]; ok {
		return n
	}
	return fmt.Sprintf("event(%d)", int(e))
}

var ErrInvalidTransition = errors.New("invalid screen transition")

type transition struct {
	from  Screen
	event Event
}

var table = map[transition]Screen{
	{Landing, Start}:                 Onboarding,
	{Onboarding, OnboardingComplete}: Commitment,
	{Commitment, Confirm}:            Auth,
	{Auth, SignedUp}:                 Payment,
	{Auth, SignedInPaid}:             Dashboard,
	{Auth, SignedInUnpaid}:           Payment,
	{Auth, SignedInNoProfile}:        Payment,
	{Auth, ShowPayment}:              Payment,
	{Payment, PaymentConfirmed}:      Dashboard,
	{Payment, BackToAuth}:            Auth,
	{Dashboard, Logout}:              Landing,
}

// Next returns the screen reached from s on e.
func Next(s Screen, e Event) (Screen, error) {
	if e == SessionEnded && s != Loading {
		return Landing, nil
	}
	if to, ok := table[transition{s, e}]; ok {
		return to, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}

// Resolved leaves Loading for the screen chosen at startup. It is the only
// way out of Loading.
func Resolved(s Screen, to Screen) (Screen, error) {
	if s != Loading {
		return s, fmt.Errorf("%w: resolve from %s", ErrInvalidTransition, s)
	}
	if to == Loading {
		return s, fmt.Errorf("%w: resolve to loading", ErrInvalidTransition)
	}
	if _, ok := screenNames[to]; !ok {
		return s, fmt.Errorf("%w: unknown %s", ErrInvalidTransition, to)
	}
	return to, nil
}

// Machine tracks the current screen.
type Machine struct {
	current Screen
}

func NewMachine() *Machine {
	return &Machine{current: Loading}
}

func (m *Machine) Current() Screen {
	return m.current
}

func (m *Machine) Fire(e Event) error {
	next, err := Next(m.current, e)
	if err != nil {
		return err
	}
	m.current = next
	return nil
}

func (m *Machine) Resolve(to Screen) error {
	next, err := Resolved(m.current, to)
	if err != nil {
		return err
	}
	m.current = next
	return nil
}

// Reset returns to Landing without going through the table. Used on logout
// from places the table has no edge for.
func (m *Machine) Reset() {
	m.current = Landing
}
