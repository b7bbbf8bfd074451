package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	"github.com/sangkips/bartab-api/internal/domain/repository"
	"github.com/sangkips/bartab-api/pkg/apperror"
	"github.com/sangkips/bartab-api/pkg/printer"
	"go.uber.org/zap"
)

// ReceiptService formats settled visits and sends them to the receipt printer.
type ReceiptService struct {
	clientRepo repository.ClientRepository
	printer    printer.Printer
	venue      string
	width      int
	logger     *zap.Logger
}

// NewReceiptService creates a new receipt service. width is the paper width in characters.
func NewReceiptService(clientRepo repository.ClientRepository, p printer.Printer, venue string, width int, logger *zap.Logger) *ReceiptService {
	return &ReceiptService{
		clientRepo: clientRepo,
		printer:    p,
		venue:      venue,
		width:      width,
		logger:     logger,
	}
}

// PrinterStatus describes the configured printer
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Ready      bool   `json:"ready"`
	Type       string `json:"type"`
}

// GetStatus probes the printer
func (s *ReceiptService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printer.Kind() != printer.KindNone,
		Ready:      s.printer.Ready(ctx),
		Type:       s.printer.Kind(),
	}
}

// BuildReceipt assembles the receipt for one of the client's settled visits
func (s *ReceiptService) BuildReceipt(ctx context.Context, clientID, sessionID uuid.UUID) (*entity.Receipt, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	for i := range client.History {
		if client.History[i].ID == sessionID {
			return entity.NewReceipt(s.venue, client, &client.History[i]), nil
		}
	}
	return nil, apperror.NewNotFoundError("Visit")
}

// PrintReceiptResult carries the receipt whether or not it reached paper
type PrintReceiptResult struct {
	Receipt *entity.Receipt `json:"receipt"`
	Printed bool            `json:"printed"`
}

// PrintReceipt prints the visit's receipt. Without a configured printer the
// receipt is still returned, with Printed false.
func (s *ReceiptService) PrintReceipt(ctx context.Context, clientID, sessionID uuid.UUID) (*PrintReceiptResult, error) {
	receipt, err := s.BuildReceipt(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}

	err = s.printer.Print(ctx, FormatReceipt(receipt, s.width))
	switch {
	case errors.Is(err, printer.ErrNotConfigured):
		return &PrintReceiptResult{Receipt: receipt}, nil
	case err != nil:
		s.logger.Error("receipt print failed",
			zap.String("client_id", clientID.String()),
			zap.String("session_id", sessionID.String()),
			zap.String("printer", s.printer.Kind()),
			zap.Error(err),
		)
		return nil, apperror.NewAppError(http.StatusServiceUnavailable, "Receipt printer unavailable")
	}

	s.logger.Info("receipt printed", zap.String("session_id", sessionID.String()))
	return &PrintReceiptResult{Receipt: receipt, Printed: true}, nil
}

// FormatReceipt renders a receipt as ESC/POS bytes
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetSize(printer.SizeDouble).
		Text(r.Venue).
		SetSize(printer.SizeNormal).
		SetBold(false).
		SetAlign(printer.AlignLeft).
		Rule('-')

	doc.Columns("Guest:", r.ClientName).
		Columns("Opened:", r.OpenedAt.Format("2006-01-02 15:04")).
		Columns("Closed:", r.ClosedAt.Format("2006-01-02 15:04")).
		Rule('-')

	for _, line := range r.Lines {
		doc.Columns(strconv.Itoa(line.Quantity)+"x "+line.Name, line.Amount.StringFixed(2))
		if line.Quantity > 1 {
			doc.Textf("  @ %s each", line.UnitPrice.StringFixed(2))
		}
	}

	doc.Rule('-').
		SetBold(true).
		Columns("TOTAL", r.Total.StringFixed(2)).
		SetBold(false)
	for _, p := range r.Payments {
		doc.Columns(p.Method.String(), p.Amount.StringFixed(2))
	}

	doc.Rule('-').
		SetAlign(printer.AlignCenter).
		Feed(1).
		Text("Thanks for stopping by!").
		SetAlign(printer.AlignLeft).
		Feed(3).
		PartialCut()

	return doc.Bytes()
}
