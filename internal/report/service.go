package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/signintech/gopdf"

	"pharmacy-ai-agent/internal/pharmacy"
	"pharmacy-ai-agent/pkg/logging"
)

// TelegramClient delivers the report to the pharmacist chat.
type TelegramClient interface {
	SendMessage(chatID int64, text string) error
	SendDocument(chatID int64, fileData []byte, fileName string) error
}

// Service renders refill alerts into a PDF and sends it to the pharmacist.
// Delivery is best-effort: the refill scan never fails because of it.
type Service struct {
	tgClient         TelegramClient
	pharmacistChatID int64
	logger           *logging.Logger
}

func NewService(tg TelegramClient, pharmacistChatID int64, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		tgClient:         tg,
		pharmacistChatID: pharmacistChatID,
		logger:           logger,
	}
}

func (s *Service) SendRefillReport(ctx context.Context, alerts []pharmacy.RefillAlert) error {
	if s.pharmacistChatID == 0 {
		return fmt.Errorf("pharmacist chat id not configured")
	}
	if len(alerts) == 0 {
		return s.tgClient.SendMessage(s.pharmacistChatID, "Refill scan complete: no patients are running low.")
	}

	pdfData, err := s.renderPDF(alerts)
	if err != nil {
		return fmt.Errorf("render refill report: %w", err)
	}

	fileName := fmt.Sprintf("refill_report_%s.pdf", time.Now().Format("2006-01-02"))
	if err := s.tgClient.SendDocument(s.pharmacistChatID, pdfData, fileName); err != nil {
		return fmt.Errorf("send refill report: %w", err)
	}

	s.logger.Info("refill report sent", "alerts", len(alerts))
	return nil
}

func (s *Service) renderPDF(alerts []pharmacy.RefillAlert) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	// DejaVuSans location varies by distro; probe the usual paths.
	fontPaths := []string{
		"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	}

	var fontErr error
	fontLoaded := false
	for _, path := range fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load font for PDF, install ttf-dejavu: %w", fontErr)
	}

	if err := pdf.SetFont("DejaVu", "", 20); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Refill Alert Report")
	pdf.Br(30)

	if err := pdf.SetFont("DejaVu", "", 12); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Generated: %s", time.Now().Format("02.01.2006 15:04")))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Patients running low: %d", len(alerts)))
	pdf.Br(25)

	if err := pdf.SetFont("DejaVu", "", 11); err != nil {
		return nil, err
	}
	for _, alert := range alerts {
		line := fmt.Sprintf("- Patient %s: %s (runs out %s)",
			alert.PatientID, alert.MedicineName, alert.ExpectedRunOut.Format("02.01.2006"))
		lines, _ := pdf.SplitText(line, 500)
		for _, l := range lines {
			pdf.Cell(nil, l)
			pdf.Br(12)
		}
		pdf.Br(5)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
