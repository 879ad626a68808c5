package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses() {
		if !s.Valid() {
			t.Errorf("Status(%q).Valid() = false; want true", s)
		}
	}
	for _, s := range []Status{"", "open", "DONE", "CLOSED "} {
		if s.Valid() {
			t.Errorf("Status(%q).Valid() = true; want false", s)
		}
	}
}

func TestPriorityValid(t *testing.T) {
	for _, p := range Priorities() {
		if !p.Valid() {
			t.Errorf("Priority(%q).Valid() = false; want true", p)
		}
	}
	for _, p := range []Priority{"", "low", "CRITICAL"} {
		if p.Valid() {
			t.Errorf("Priority(%q).Valid() = true; want false", p)
		}
	}
}

func TestTicketClosed(t *testing.T) {
	if !(Ticket{Status: StatusClosed}).Closed() {
		t.Fatal("CLOSED ticket should report Closed")
	}
	for _, s := range []Status{StatusOpen, StatusInProgress, StatusCancelled} {
		if (Ticket{Status: s}).Closed() {
			t.Errorf("ticket with status %q should not report Closed", s)
		}
	}
}

func TestCreateTicketInput_Normalize(t *testing.T) {
	in := CreateTicketInput{Subject: "  Printer down  ", Description: "\tWon't power on\n"}
	got := in.Normalize()

	if got.Subject != "Printer down" {
		t.Errorf("Subject = %q; want trimmed", got.Subject)
	}
	if got.Description != "Won't power on" {
		t.Errorf("Description = %q; want trimmed", got.Description)
	}
	if got.Priority != PriorityLow {
		t.Errorf("Priority = %q; want default LOW", got.Priority)
	}
	// Explicit priority survives normalization.
	if p := (CreateTicketInput{Priority: PriorityHigh}).Normalize().Priority; p != PriorityHigh {
		t.Errorf("explicit priority overwritten: %q", p)
	}
	// Receiver untouched.
	if in.Subject != "  Printer down  " {
		t.Errorf("Normalize mutated receiver: %q", in.Subject)
	}
}

func TestCreateTicketInput_Validate(t *testing.T) {
	valid := CreateTicketInput{
		Subject:     "Printer down",
		Description: "Won't power on",
		Priority:    PriorityHigh,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	cases := []struct {
		name string
		in   CreateTicketInput
		want error
	}{
		{"empty subject", CreateTicketInput{Description: "d", Priority: PriorityLow}, ErrSubjectRequired},
		{"subject too long", CreateTicketInput{Subject: strings.Repeat("x", 256), Description: "d", Priority: PriorityLow}, ErrSubjectTooLong},
		{"empty description", CreateTicketInput{Subject: "s", Priority: PriorityLow}, ErrDescriptionRequired},
		{"bad priority", CreateTicketInput{Subject: "s", Description: "d", Priority: "SEVERE"}, ErrInvalidPriority},
	}
	for _, tc := range cases {
		if err := tc.in.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("%s: Validate() = %v; want %v", tc.name, err, tc.want)
		}
	}

	// 255 runes (multi-byte) is exactly at the limit.
	at := CreateTicketInput{Subject: strings.Repeat("☃", 255), Description: "d", Priority: PriorityLow}
	if err := at.Validate(); err != nil {
		t.Fatalf("255-rune subject rejected: %v", err)
	}
}
