package flow

import (
	"errors"
	"testing"
)

var allScreens = []Screen{Loading, Landing, Onboarding, Commitment, Auth, Payment, Dashboard}

func TestNext(t *testing.T) {
	tests := []struct {
		from  Screen
		event Event
		want  Screen
	}{
		{Landing, Start, Onboarding},
		{Onboarding, OnboardingComplete, Commitment},
		{Commitment, Confirm, Auth},
		{Auth, SignedUp, Payment},
		{Auth, SignedInPaid, Dashboard},
		{Auth, SignedInUnpaid, Payment},
		{Auth, SignedInNoProfile, Payment},
		{Auth, ShowPayment, Payment},
		{Payment, PaymentConfirmed, Dashboard},
		{Payment, BackToAuth, Auth},
		{Dashboard, Logout, Landing},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.event.String(), func(t *testing.T) {
			got, err := Next(tt.from, tt.event)
			if err != nil {
				t.Fatalf("Next() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextRejectsUnlistedPairs(t *testing.T) {
	tests := []struct {
		from  Screen
		event Event
	}{
		{Landing, PaymentConfirmed},
		{Onboarding, Confirm},
		{Commitment, SignedInPaid},
		{Payment, SignedUp},
		{Dashboard, Start},
		{Loading, Start},
		{Loading, Logout},
	}
	for _, tt := range tests {
		got, err := Next(tt.from, tt.event)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Next(%v, %v) error = %v, want ErrInvalidTransition", tt.from, tt.event, err)
		}
		if got != tt.from {
			t.Errorf("Next(%v, %v) moved to %v", tt.from, tt.event, got)
		}
	}
}

func TestSessionEndedFromAnyScreen(t *testing.T) {
	for _, s := range allScreens {
		got, err := Next(s, SessionEnded)
		if s == Loading {
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("SessionEnded from loading error = %v", err)
			}
			continue
		}
		if err != nil || got != Landing {
			t.Errorf("Next(%v, SessionEnded) = %v, %v", s, got, err)
		}
	}
}

func TestResolved(t *testing.T) {
	for _, to := range allScreens[1:] {
		got, err := Resolved(Loading, to)
		if err != nil || got != to {
			t.Errorf("Resolved(Loading, %v) = %v, %v", to, got, err)
		}
	}
	if _, err := Resolved(Dashboard, Payment); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Resolved from dashboard error = %v", err)
	}
	if _, err := Resolved(Loading, Loading); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Resolved to loading error = %v", err)
	}
	if _, err := Resolved(Loading, Screen(99)); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Resolved to unknown error = %v", err)
	}
}

// Scenario: a new user walks the full funnel.
func TestMachineFunnel(t *testing.T) {
	m := NewMachine()
	if m.Current() != Loading {
		t.Fatalf("initial screen = %v", m.Current())
	}
	if err := m.Resolve(Landing); err != nil {
		t.Fatal(err)
	}
	for _, e := range []Event{Start, OnboardingComplete, Confirm, SignedUp, PaymentConfirmed} {
		if err := m.Fire(e); err != nil {
			t.Fatalf("Fire(%v) error = %v", e, err)
		}
	}
	if m.Current() != Dashboard {
		t.Errorf("screen = %v, want dashboard", m.Current())
	}
	if err := m.Fire(Start); err == nil {
		t.Error("Start from dashboard should fail")
	}
	if err := m.Fire(Logout); err != nil || m.Current() != Landing {
		t.Errorf("Logout: %v, screen %v", err, m.Current())
	}
}
