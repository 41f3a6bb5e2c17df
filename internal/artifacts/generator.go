package artifacts

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

const qrImageSize = 256

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Generator генератор PDF-квитанций бронирования с QR-кодом
// Квитанция именуется по коду бронирования, повторная генерация не
// перезаписывает уже созданный файл
type Generator struct {
	dir    string
	logger Logger
}

// NewGenerator создает новый генератор квитанций
// Каталог для файлов создается при первом обращении
func NewGenerator(dir string, logger Logger) *Generator {
	return &Generator{
		dir:    dir,
		logger: logger,
	}
}

// GenerateBookingSlip генерирует PDF-квитанцию бронирования
func (g *Generator) GenerateBookingSlip(booking *domain.Booking) error {
	if booking == nil || booking.Code == "" {
		return fmt.Errorf("artifacts: booking with code is required")
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return fmt.Errorf("artifacts: failed to create directory %s: %v", g.dir, err)
	}

	path := filepath.Join(g.dir, booking.Code+".pdf")
	if _, err := os.Stat(path); err == nil {
		g.logger.Info("GenerateBookingSlip: slip for %s already exists", booking.Code)
		return nil
	}

	// QR-код содержит публичный код бронирования, по нему шлагбаум
	// находит бронирование при въезде
	qrPNG, err := qrcode.Encode(booking.Code, qrcode.Medium, qrImageSize)
	if err != nil {
		return fmt.Errorf("artifacts: failed to encode qr code: %v", err)
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Parking Booking Slip", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	writeRow := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(40, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
	}

	writeRow("Booking code:", booking.Code)
	writeRow("Vehicle:", booking.VehicleNumber)
	writeRow("Valid from:", booking.StartTime.Format(time.RFC1123))
	writeRow("Arrive before:", booking.EndTime.Format(time.RFC1123))
	writeRow("Status:", string(booking.Status))

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(booking.Code, imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions(booking.Code, 45, pdf.GetY()+8, 58, 58, false, imageOpts, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("artifacts: failed to write pdf %s: %v", path, err)
	}

	g.logger.Info("GenerateBookingSlip: slip written to %s", path)
	return nil
}
