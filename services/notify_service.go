package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"freight-app/config"
	"freight-app/models"

	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// Mailer sends one email. Tests swap in a fake so nothing dials SMTP.
type Mailer interface {
	Send(toEmails []string, subject string, htmlBody string) error
}

type SMTPMailer struct{}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{}
}

func (m *SMTPMailer) Send(toEmails []string, subject string, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", config.SMTPSender)
	msg.SetHeader("To", toEmails...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPSender, config.SMTPPassword)
	if err := dialer.DialAndSend(msg); err != nil {
		return err
	}
	return nil
}

type NotifyService struct {
	DB     *gorm.DB
	Mailer Mailer
}

func NewNotifyService(db *gorm.DB, mailer Mailer) *NotifyService {
	return &NotifyService{DB: db, Mailer: mailer}
}

// send delivers and logs one email. A failed send is logged, it never bubbles
// up into the request or task that triggered it.
func (s *NotifyService) send(kind string, toEmails []string, subject string, body string) {
	if len(toEmails) == 0 {
		return
	}

	status := models.NotificationStatusSent
	errText := ""
	if err := s.Mailer.Send(toEmails, subject, body); err != nil {
		log.Println("❌ Failed to send email:", err)
		status = models.NotificationStatusFailed
		errText = err.Error()
	} else {
		log.Println("✅ Email sent to:", toEmails)
	}

	for _, rcpt := range toEmails {
		s.DB.Create(&models.NotificationLog{
			Kind:      kind,
			Recipient: rcpt,
			Subject:   subject,
			Status:    status,
			Error:     errText,
		})
	}
}

type arrivalRecipient struct {
	Email string
	Name  string
	Items int64
}

// NotifyContainerArrival emails every matched customer with goods on the
// container. Customers without an email address are skipped silently, the
// front desk reaches them by phone.
func (s *NotifyService) NotifyContainerArrival(container *models.CargoContainer) {
	var recipients []arrivalRecipient
	err := s.DB.Model(&models.WarehouseItem{}).
		Select("customers.email AS email, customers.name AS name, COUNT(*) AS items").
		Joins("JOIN customers ON customers.id = warehouse_items.customer_id").
		Where("warehouse_items.container_id = ? AND warehouse_items.match_status = ?", container.ID, models.MatchStatusMatched).
		Where("customers.deleted_at IS NULL AND customers.email <> ''").
		Group("customers.email, customers.name").
		Scan(&recipients).Error
	if err != nil {
		log.Println("❌ Failed to load arrival recipients:", err)
		return
	}

	ref := container.ContainerNo
	for _, r := range recipients {
		subject := "📦 Your goods have arrived - " + ref
		body := fmt.Sprintf(`
		<html>
			<body>
				<h3>Container %s has arrived</h3>
				<p>Dear %s,</p>
				<p>Your shipment of <strong>%d package(s)</strong> has arrived in Ghana and will be ready for pickup after offloading.</p>
				<p>This is an auto-generated email. Please do not reply to this email or its recipients.</p>
			</body>
		</html>
	`, ref, r.Name, r.Items)
		s.send(models.NotificationKindArrival, []string{r.Email}, subject, body)
	}
}

// NotifyImportReport mails the operations inbox when a background import
// finishes, success or not.
func (s *NotifyService) NotifyImportReport(task *models.ImportTask) {
	if len(config.OpsEmails) == 0 {
		return
	}

	subject := fmt.Sprintf("Import task %s %s", task.ID.String(), task.Status)
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h3>Import task %s</h3>", task.ID.String())
	fmt.Fprintf(&b, "<p>Type: <strong>%s</strong><br>Status: <strong>%s</strong></p>", task.Type, task.Status)
	fmt.Fprintf(&b, "<p>Rows: %d, created: %d, skipped: %d, failed: %d, unmatched: %d</p>",
		task.TotalRows, task.CreatedCount, task.SkippedCount, task.FailedCount, task.UnmatchedCount)
	if task.ErrorText != "" {
		fmt.Fprintf(&b, "<p>Error: %s</p>", task.ErrorText)
	}
	if errs := task.GetRowErrors(); len(errs) > 0 {
		b.WriteString("<ul>")
		for _, e := range errs {
			fmt.Fprintf(&b, "<li>Row %d: %s</li>", e.Row, e.Message)
		}
		b.WriteString("</ul>")
	}
	b.WriteString("<p>This is an auto-generated email. Please do not reply to this email or its recipients.</p>")
	b.WriteString("</body></html>")

	s.send(models.NotificationKindImportReport, config.OpsEmails, subject, b.String())
}

// NotifyOpsDigest is the daily summary the processor sends: how many
// shipping mark groups still wait for a customer, and for how long.
func (s *NotifyService) NotifyOpsDigest(groupCount int64, itemCount int64, oldest *time.Time) {
	if len(config.OpsEmails) == 0 || groupCount == 0 {
		return
	}

	subject := fmt.Sprintf("Unmatched goods digest: %d shipping mark(s) open", groupCount)
	oldestLine := ""
	if oldest != nil {
		oldestLine = fmt.Sprintf("<p>Oldest unmatched item received: %s</p>", oldest.Format("2006-01-02"))
	}
	body := fmt.Sprintf(`
		<html>
			<body>
				<h3>Unmatched goods waiting for review</h3>
				<p><strong>%d</strong> shipping mark(s) covering <strong>%d</strong> package(s) have no customer assigned.</p>
				%s
				<p>This is an auto-generated email. Please do not reply to this email or its recipients.</p>
			</body>
		</html>
	`, groupCount, itemCount, oldestLine)

	s.send(models.NotificationKindOpsDigest, config.OpsEmails, subject, body)
}
