package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
	functions "github.com/supabase-community/functions-go"

	"pairconnect/api/internal/jobs"
)

// Transport names accepted by NewMailer.
const (
	TransportResend   = "resend"
	TransportFunction = "function"
	TransportLog      = "log"
)

// SendEmailFunction is the edge function that relays e-mails.
const SendEmailFunction = "send-email"

type resendSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendMailer sends e-mails through the Resend API.
type ResendMailer struct {
	emails resendSender
}

// NewResendMailer returns a mailer authenticated with apiKey.
func NewResendMailer(apiKey string) *ResendMailer {
	return &ResendMailer{emails: resend.NewClient(apiKey).Emails}
}

func (m *ResendMailer) Send(ctx context.Context, email jobs.Email) error {
	resp, err := m.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    email.From,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	if resp == nil || resp.Id == "" {
		return errors.New("resend: empty response")
	}
	return nil
}

// FunctionMailer posts e-mails to the send-email edge function, using the
// functions-go request and response envelopes.
type FunctionMailer struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewFunctionMailer returns a mailer posting to the edge functions under
// functionsURL, authenticated with token.
func NewFunctionMailer(functionsURL, token string, client *http.Client) *FunctionMailer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FunctionMailer{baseURL: strings.TrimRight(functionsURL, "/"), token: token, client: client}
}

func (m *FunctionMailer) Send(ctx context.Context, email jobs.Email) error {
	payload, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", SendEmailFunction, err)
	}
	resp, err := m.invoke(ctx, SendEmailFunction, functions.FunctionInvokeOptions{Body: bytes.NewReader(payload)})
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("%s: %v", SendEmailFunction, resp.Error)
	}
	return nil
}

func (m *FunctionMailer) invoke(ctx context.Context, name string, opts functions.FunctionInvokeOptions) (*functions.FunctionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/"+name, opts.Body)
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.token)
	req.Header.Set("apikey", m.token)

	res, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", name, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("invoke %s: read response: %w", name, err)
	}
	if res.Header.Get("x-relay-error") == "true" {
		return nil, fmt.Errorf("invoke %s: relay error: %s", name, strings.TrimSpace(string(body)))
	}

	out := &functions.FunctionResponse{Status: res.StatusCode}
	if len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil && res.StatusCode < 300 {
			return nil, fmt.Errorf("invoke %s: decode response: %w", name, err)
		}
		out.Status = res.StatusCode
	}
	if res.StatusCode >= 300 && out.Error == nil {
		out.Error = fmt.Sprintf("status %d", res.StatusCode)
	}
	return out, nil
}

// LogMailer only logs the e-mails it is given.
type LogMailer struct {
	logger logrus.FieldLogger
}

func NewLogMailer(logger logrus.FieldLogger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, email jobs.Email) error {
	m.logger.WithFields(logrus.Fields{
		"to":      email.To,
		"subject": email.Subject,
	}).Info("email not sent, log transport")
	return nil
}

// MailerOptions selects and configures the e-mail transport.
type MailerOptions struct {
	Transport    string
	ResendAPIKey string
	// FunctionsURL is the edge functions base, e.g. SUPABASE_URL + "/functions/v1".
	FunctionsURL   string
	FunctionsToken string
	HTTPClient     *http.Client
}

// NewMailer builds the mailer for opts. An empty transport means Resend when
// an API key is configured and the log mailer otherwise.
func NewMailer(opts MailerOptions, logger logrus.FieldLogger) (jobs.Mailer, error) {
	transport := opts.Transport
	if transport == "" {
		transport = TransportLog
		if opts.ResendAPIKey != "" {
			transport = TransportResend
		}
	}

	switch transport {
	case TransportResend:
		if opts.ResendAPIKey == "" {
			return nil, errors.New("resend transport requires RESEND_API_KEY")
		}
		return NewResendMailer(opts.ResendAPIKey), nil
	case TransportFunction:
		if opts.FunctionsURL == "" || opts.FunctionsToken == "" {
			return nil, errors.New("function transport requires the functions URL and a token")
		}
		return NewFunctionMailer(opts.FunctionsURL, opts.FunctionsToken, opts.HTTPClient), nil
	case TransportLog:
		return NewLogMailer(logger), nil
	default:
		return nil, fmt.Errorf("unknown email transport %q", transport)
	}
}
