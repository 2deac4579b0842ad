package notify

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/avora-app/reservations/internal/mailer"
	"github.com/avora-app/reservations/internal/model"
)

// Notifier emails requesters about their reservation. Write paths call it
// after a successful commit; it never reports failure back, so a lost email
// can never undo or fail the write that triggered it.
type Notifier struct {
	sender mailer.Sender
	log    *zerolog.Logger
}

func New(sender mailer.Sender, log *zerolog.Logger) *Notifier {
	return &Notifier{sender: sender, log: log}
}

// ReservationReceived sends the confirmation for a newly created reservation.
func (n *Notifier) ReservationReceived(r *model.Reservation) {
	subject := fmt.Sprintf("Reservation Received #%d", r.ID)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello %s,\n\n", r.Name)
	sb.WriteString("Thanks for your reservation request. We've received it and our team is currently reviewing the details.\n\n")
	sb.WriteString("Reservation Details:\n")
	fmt.Fprintf(&sb, "- Date: %s\n", r.Date)
	fmt.Fprintf(&sb, "- Time: %s - %s\n", r.StartTime, r.EndTime)
	fmt.Fprintf(&sb, "- Guests: %d\n", r.NumberOfGuests)
	sb.WriteString("- Status: Pending\n")
	if r.SpecialRequests != "" {
		fmt.Fprintf(&sb, "\nSpecial Requests: %s\n", r.SpecialRequests)
	}
	sb.WriteString("\nWe will review your request and notify you once a decision is made.\n\nBest regards,\nThe Avora Team")

	if err := n.sender.Send(subject, sb.String(), r.Email); err != nil {
		n.log.Warn().Err(err).Int64("reservation_id", r.ID).Msg("Failed to send confirmation email")
	}
}

// StatusChanged sends the decision email when moderation moved the status to
// accepted or declined. Anything else (no change, back to pending) is silent.
func (n *Notifier) StatusChanged(oldStatus string, r *model.Reservation) {
	if oldStatus == r.Status {
		return
	}
	if r.Status != model.StatusAccepted && r.Status != model.StatusDeclined {
		return
	}

	var subject, outcome, display string
	if r.Status == model.StatusAccepted {
		subject = fmt.Sprintf("Reservation Accepted #%d", r.ID)
		outcome = "Great news! Your reservation has been accepted. We look forward to serving you!"
		display = "Accepted"
	} else {
		subject = fmt.Sprintf("Reservation Declined #%d", r.ID)
		outcome = "We regret to inform you that your reservation has been declined. We apologize for any inconvenience."
		display = "Declined"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello %s,\n\n", r.Name)
	fmt.Fprintf(&sb, "Your reservation has been %s.\n\n", r.Status)
	sb.WriteString("Reservation Details:\n")
	fmt.Fprintf(&sb, "- Table ID: #%d\n", r.ID)
	fmt.Fprintf(&sb, "- Date: %s\n", r.Date)
	fmt.Fprintf(&sb, "- Time: %s - %s\n", r.StartTime, r.EndTime)
	fmt.Fprintf(&sb, "- Guests: %d\n", r.NumberOfGuests)
	fmt.Fprintf(&sb, "- Status: %s\n\n", display)
	sb.WriteString(outcome)
	sb.WriteString("\n\nBest regards,\nThe Avora Team")

	if err := n.sender.Send(subject, sb.String(), r.Email); err != nil {
		n.log.Warn().Err(err).Int64("reservation_id", r.ID).Str("status", r.Status).Msg("Failed to send status email")
	}
}
