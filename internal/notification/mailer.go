package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
	"golang.org/x/time/rate"
)

const confirmationTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Booking confirmation</h2>
  <p>Hello {{.UserName}}, your meeting room request has been recorded.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><b>Booking</b></td><td>#{{.BookingID}}</td></tr>
    <tr><td><b>Room</b></td><td>{{.RoomName}}</td></tr>
    {{- if .Title}}
    <tr><td><b>Title</b></td><td>{{.Title}}</td></tr>
    {{- end}}
    <tr><td><b>Start</b></td><td>{{.Start}}</td></tr>
    <tr><td><b>End</b></td><td>{{.End}}</td></tr>
    <tr><td><b>Status</b></td><td>{{.Status}}</td></tr>
  </table>
</body>
</html>`

const mailTimeLayout = "Mon 02 Jan 2006 15:04 MST"

// Sender delivers prepared messages; *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	RatePerSecond float64
}

// Mailer sends booking confirmations over SMTP. Sends are throttled so a
// burst of bookings does not trip the relay's rate limits.
type Mailer struct {
	sender  Sender
	from    string
	limiter *rate.Limiter
	tpl     *template.Template
	loc     *time.Location
	log     zerolog.Logger
}

// NewSMTPClient builds a go-mail client from cfg.
func NewSMTPClient(cfg SMTPConfig) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return client, nil
}

func NewMailer(sender Sender, from string, ratePerSecond float64, loc *time.Location, log zerolog.Logger) *Mailer {
	if loc == nil {
		loc = time.UTC
	}
	return &Mailer{
		sender:  sender,
		from:    from,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		tpl:     template.Must(template.New("confirmation").Parse(confirmationTemplate)),
		loc:     loc,
		log:     log.With().Str("component", "mailer").Logger(),
	}
}

// SendBookingConfirmation renders and sends the confirmation for s to the
// given address.
func (m *Mailer) SendBookingConfirmation(ctx context.Context, to string, s BookingSummary) error {
	body, err := m.render(s)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(fmt.Sprintf("Booking #%d: %s", s.BookingID, s.RoomName))
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail rate limit: %w", err)
	}
	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		m.log.Warn().Err(err).Int64("booking_id", s.BookingID).Msg("confirmation email failed")
		return fmt.Errorf("send mail: %w", err)
	}
	m.log.Debug().Int64("booking_id", s.BookingID).Msg("confirmation email sent")
	return nil
}

func (m *Mailer) render(s BookingSummary) (string, error) {
	view := struct {
		BookingID int64
		RoomName  string
		UserName  string
		Title     string
		Start     string
		End       string
		Status    string
	}{
		BookingID: s.BookingID,
		RoomName:  s.RoomName,
		UserName:  s.UserName,
		Title:     s.Title,
		Start:     s.Start.In(m.loc).Format(mailTimeLayout),
		End:       s.End.In(m.loc).Format(mailTimeLayout),
		Status:    string(s.Status),
	}

	var buf bytes.Buffer
	if err := m.tpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}
	return buf.String(), nil
}
