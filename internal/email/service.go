package email

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/aafiyacare/homecare-api/internal/model"
	"github.com/aafiyacare/homecare-api/pkg/logger"
)

type Service interface {
	SendComplianceReport(ctx context.Context, to []string, report *model.ComplianceReport) error
	SendCustom(ctx context.Context, to []string, subject, body string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

func NewService(cfg Config, log *logger.Logger) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: log.WithComponent("email"),
	}
}

func (s *smtpService) SendComplianceReport(ctx context.Context, to []string, report *model.ComplianceReport) error {
	subject := fmt.Sprintf("Compliance report %s: %d of %d records valid",
		report.CreatedAt.Format("2006-01-02"), report.ValidCount, report.PatientCount)
	return s.send(ctx, to, subject, renderComplianceReport(report))
}

func (s *smtpService) SendCustom(ctx context.Context, to []string, subject, body string) error {
	return s.send(ctx, to, subject, body)
}

func (s *smtpService) send(ctx context.Context, to []string, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent", "recipients", len(to), "subject", subject)
	return nil
}

func renderComplianceReport(report *model.ComplianceReport) string {
	var b strings.Builder
	b.WriteString("<h2>Patient record compliance report</h2>")
	fmt.Fprintf(&b, "<p>Generated %s</p>", report.CreatedAt.Format("2006-01-02 15:04 MST"))
	b.WriteString("<ul>")
	fmt.Fprintf(&b, "<li>Records checked: %d</li>", report.PatientCount)
	fmt.Fprintf(&b, "<li>Valid: %d</li>", report.ValidCount)
	fmt.Fprintf(&b, "<li>Invalid: %d</li>", report.InvalidCount)
	if report.InfrastructureFailed > 0 {
		fmt.Fprintf(&b, "<li>Could not be checked: %d</li>", report.InfrastructureFailed)
	}
	b.WriteString("</ul>")

	var summary model.BatchSummary
	if err := json.Unmarshal(report.Summary, &summary); err == nil && len(summary.ComplianceRates) > 0 {
		b.WriteString("<h3>Compliance by category</h3><ul>")
		for category, rate := range summary.ComplianceRates {
			fmt.Fprintf(&b, "<li>%s: %.0f%%</li>", category, rate*100)
		}
		b.WriteString("</ul>")
	}

	return b.String()
}
