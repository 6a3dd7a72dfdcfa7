package notification

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/infrastructure/email"
)

type Kind string

const (
	KindRequestSent     Kind = "request_sent"
	KindRequestAccepted Kind = "request_accepted"
	KindPendingDigest   Kind = "pending_digest"
)

// digestPreview is how many senders a digest lists before summarising the rest.
const digestPreview = 3

type Event struct {
	Kind Kind
	To   *domain.User
	// From holds the acting user, or the pending senders for a digest.
	From  []*domain.PublicUser
	Count int
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

type EmailSender interface {
	Send(ctx context.Context, msg email.Message) error
}

// EmailNotifier turns events into emails.
type EmailNotifier struct {
	sender EmailSender
}

func NewEmailNotifier(sender EmailSender) *EmailNotifier {
	return &EmailNotifier{sender: sender}
}

func (n *EmailNotifier) Notify(ctx context.Context, event Event) error {
	msg, err := compose(event)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, msg)
}

func compose(event Event) (email.Message, error) {
	if event.To == nil || event.To.Email == "" {
		return email.Message{}, fmt.Errorf("notification %s has no recipient", event.Kind)
	}

	msg := email.Message{To: event.To.Email}

	switch event.Kind {
	case KindRequestSent:
		from := firstSender(event)
		msg.Subject = fmt.Sprintf("%s wants to connect with you", fullName(from))
		msg.Text = fmt.Sprintf("Hi %s, %s is interested in connecting with you. Log in to review the request.",
			event.To.FirstName, fullName(from))
		msg.HTML = fmt.Sprintf("<p>Hi %s,</p><p><strong>%s</strong> is interested in connecting with you.</p>%s<p>Log in to review the request.</p>",
			html.EscapeString(event.To.FirstName), html.EscapeString(fullName(from)), profileCard(from))

	case KindRequestAccepted:
		from := firstSender(event)
		msg.Subject = fmt.Sprintf("%s accepted your connection request", fullName(from))
		msg.Text = fmt.Sprintf("Hi %s, %s accepted your connection request. You can start chatting now.",
			event.To.FirstName, fullName(from))
		msg.HTML = fmt.Sprintf("<p>Hi %s,</p><p><strong>%s</strong> accepted your connection request.</p>%s<p>You can start chatting now.</p>",
			html.EscapeString(event.To.FirstName), html.EscapeString(fullName(from)), profileCard(from))

	case KindPendingDigest:
		noun := "requests"
		if event.Count == 1 {
			noun = "request"
		}
		msg.Subject = fmt.Sprintf("You have %d pending connection %s", event.Count, noun)

		var cards strings.Builder
		for i, from := range event.From {
			if i == digestPreview {
				break
			}
			cards.WriteString(profileCard(from))
		}
		more := ""
		if rest := event.Count - digestPreview; rest > 0 {
			more = fmt.Sprintf("<p>And %d more waiting to connect!</p>", rest)
		}
		msg.Text = fmt.Sprintf("Hi %s, you have %d pending connection %s waiting for your review.",
			event.To.FirstName, event.Count, noun)
		msg.HTML = fmt.Sprintf("<p>Hi %s,</p><p>You have %d pending connection %s.</p>%s%s",
			html.EscapeString(event.To.FirstName), event.Count, noun, cards.String(), more)

	default:
		return email.Message{}, fmt.Errorf("unknown notification kind %q", event.Kind)
	}

	return msg, nil
}

func firstSender(event Event) *domain.PublicUser {
	if len(event.From) == 0 {
		return &domain.PublicUser{FirstName: "Someone"}
	}
	return event.From[0]
}

func fullName(u *domain.PublicUser) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func profileCard(u *domain.PublicUser) string {
	var b strings.Builder
	b.WriteString("<div><h4>")
	b.WriteString(html.EscapeString(fullName(u)))
	b.WriteString("</h4>")
	if u.About != "" {
		b.WriteString("<p><strong>About:</strong> ")
		b.WriteString(html.EscapeString(u.About))
		b.WriteString("</p>")
	}
	if len(u.Skills) > 0 {
		b.WriteString("<p><strong>Skills:</strong> ")
		b.WriteString(html.EscapeString(strings.Join(u.Skills, ", ")))
		b.WriteString("</p>")
	}
	b.WriteString("</div>")
	return b.String()
}
