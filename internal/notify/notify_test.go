package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/avora-app/reservations/internal/model"
)

type sentMail struct {
	subject, body, recipient string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(subject, body, recipient string) error {
	f.sent = append(f.sent, sentMail{subject, body, recipient})
	return f.err
}

func newNotifier(f *fakeSender) *Notifier {
	log := zerolog.Nop()
	return New(f, &log)
}

func sample() *model.Reservation {
	return &model.Reservation{
		ID:              12,
		Name:            "Alice",
		Email:           "a@x.com",
		Phone:           "555-1234",
		Date:            "2099-01-01",
		StartTime:       "18:00",
		EndTime:         "20:00",
		NumberOfGuests:  4,
		SpecialRequests: "window seat",
		Status:          model.StatusPending,
	}
}

func TestReservationReceived(t *testing.T) {
	f := &fakeSender{}
	newNotifier(f).ReservationReceived(sample())

	if len(f.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(f.sent))
	}
	m := f.sent[0]
	if m.recipient != "a@x.com" {
		t.Errorf("recipient = %s, want a@x.com", m.recipient)
	}
	if m.subject != "Reservation Received #12" {
		t.Errorf("subject = %q", m.subject)
	}
	for _, want := range []string{"2099-01-01", "18:00 - 20:00", "Guests: 4", "Status: Pending", "window seat"} {
		if !strings.Contains(m.body, want) {
			t.Errorf("body missing %q:\n%s", want, m.body)
		}
	}
}

func TestReservationReceivedNoSpecialRequests(t *testing.T) {
	f := &fakeSender{}
	r := sample()
	r.SpecialRequests = ""
	newNotifier(f).ReservationReceived(r)

	if strings.Contains(f.sent[0].body, "Special Requests") {
		t.Error("body must omit the special requests block when empty")
	}
}

func TestStatusChangedAccepted(t *testing.T) {
	f := &fakeSender{}
	r := sample()
	r.Status = model.StatusAccepted
	newNotifier(f).StatusChanged(model.StatusPending, r)

	if len(f.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(f.sent))
	}
	if f.sent[0].subject != "Reservation Accepted #12" {
		t.Errorf("subject = %q", f.sent[0].subject)
	}
	if !strings.Contains(f.sent[0].body, "has been accepted") {
		t.Errorf("body = %q", f.sent[0].body)
	}
}

func TestStatusChangedDeclined(t *testing.T) {
	f := &fakeSender{}
	r := sample()
	r.Status = model.StatusDeclined
	newNotifier(f).StatusChanged(model.StatusPending, r)

	if len(f.sent) != 1 || f.sent[0].subject != "Reservation Declined #12" {
		t.Fatalf("sent = %+v, want one declined email", f.sent)
	}
}

func TestStatusChangedSilentCases(t *testing.T) {
	cases := []struct {
		name      string
		oldStatus string
		newStatus string
	}{
		{"no change", model.StatusPending, model.StatusPending},
		{"accepted unchanged", model.StatusAccepted, model.StatusAccepted},
		{"back to pending", model.StatusAccepted, model.StatusPending},
	}
	for _, c := range cases {
		f := &fakeSender{}
		r := sample()
		r.Status = c.newStatus
		newNotifier(f).StatusChanged(c.oldStatus, r)
		if len(f.sent) != 0 {
			t.Errorf("%s: sent %d emails, want 0", c.name, len(f.sent))
		}
	}
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	f := &fakeSender{err: errors.New("smtp down")}
	n := newNotifier(f)

	// Neither call may panic or surface the transport error.
	n.ReservationReceived(sample())
	r := sample()
	r.Status = model.StatusAccepted
	n.StatusChanged(model.StatusPending, r)

	if len(f.sent) != 2 {
		t.Fatalf("attempts = %d, want 2 (one per event, no retries)", len(f.sent))
	}
}
