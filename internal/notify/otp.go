package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

const otpSubject = "Your password reset code"

var otpTemplate = template.Must(template.New("otp").Parse(`<p>Hello,</p>
<p>Your one-time password reset code is <strong>{{.Code}}</strong>.</p>
<p>It expires in {{.Minutes}} minutes. If you did not request a reset you can ignore this email.</p>
`))

// OTPNotifier renders the OTP email and hands it to a Mailer within a bounded time.
type OTPNotifier struct {
	mailer  Mailer
	timeout time.Duration
	ttl     time.Duration
}

func NewOTPNotifier(mailer Mailer, timeout, ttl time.Duration) *OTPNotifier {
	return &OTPNotifier{mailer: mailer, timeout: timeout, ttl: ttl}
}

func (n *OTPNotifier) DeliverOTP(ctx context.Context, address, code string) error {
	var body bytes.Buffer
	err := otpTemplate.Execute(&body, struct {
		Code    string
		Minutes int
	}{Code: code, Minutes: int(n.ttl.Minutes())})
	if err != nil {
		return fmt.Errorf("failed to render otp email: %w", err)
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	return n.mailer.Send(ctx, Message{To: address, Subject: otpSubject, HTML: body.String()})
}
