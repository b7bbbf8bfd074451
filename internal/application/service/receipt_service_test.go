package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/domain/entity"
	"github.com/sangkips/bartab-api/internal/domain/enum"
	"github.com/sangkips/bartab-api/pkg/apperror"
	"github.com/sangkips/bartab-api/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPrinter struct {
	jobs [][]byte
	err  error
}

func (p *recordingPrinter) Print(_ context.Context, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, append([]byte(nil), data...))
	return nil
}

func (p *recordingPrinter) Ready(context.Context) bool { return p.err == nil }
func (p *recordingPrinter) Kind() string { return printer.KindNetwork }

// splitVisit settles Craft IPA x2 and Pretzel Bites as 12 cash / 8 card
func splitVisit(t *testing.T, env *testEnv) (*entity.Client, *entity.TabSession) {
	t.Helper()
	ipa := env.product(t, "Craft IPA", "Beer", "7.5")
	pretzel := env.product(t, "Pretzel Bites", "Snack", "5")
	ada := env.client(t, "Ada")
	env.add(t, ada.ID, ipa, ipa, pretzel)

	res, err := env.settlement.Settle(context.Background(), ada.ID, []entity.SplitPayment{
		pay(enum.PaymentMethodCash, "12"),
		pay(enum.PaymentMethodCreditCard, "8"),
	})
	require.NoError(t, err)
	return res.Client, res.Session
}

func TestReceiptService_BuildReceipt(t *testing.T) {
	env := newTestEnv(t)
	ada, session := splitVisit(t, env)
	svc := NewReceiptService(env.clientRepo, printer.NewNullPrinter(), "The Tap Room", 32, zap.NewNop())

	r, err := svc.BuildReceipt(context.Background(), ada.ID, session.ID)
	require.NoError(t, err)

	assert.Equal(t, "The Tap Room", r.Venue)
	assert.Equal(t, "Ada", r.ClientName)
	require.Len(t, r.Lines, 2)
	assert.Equal(t, "Craft IPA", r.Lines[0].Name)
	assert.Equal(t, 2, r.Lines[0].Quantity)
	assert.True(t, r.Lines[0].Amount.Equal(dec("15")))
	assert.True(t, r.Lines[1].Amount.Equal(dec("5")))
	require.Len(t, r.Payments, 2)
	assert.Equal(t, enum.PaymentMethodCash, r.Payments[0].Method)
	assert.True(t, r.Payments[0].Amount.Equal(dec("12")))
	assert.True(t, r.Payments[1].Amount.Equal(dec("8")))
	assert.True(t, r.Total.Equal(dec("20")))

	_, err = svc.BuildReceipt(context.Background(), ada.ID, uuid.New())
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
	_, err = svc.BuildReceipt(context.Background(), uuid.New(), session.ID)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestReceiptService_PrintReceipt(t *testing.T) {
	env := newTestEnv(t)
	ada, session := splitVisit(t, env)
	ctx := context.Background()

	t.Run("no printer configured", func(t *testing.T) {
		svc := NewReceiptService(env.clientRepo, printer.NewNullPrinter(), "The Tap Room", 32, zap.NewNop())

		res, err := svc.PrintReceipt(ctx, ada.ID, session.ID)

		require.NoError(t, err)
		assert.False(t, res.Printed)
		assert.NotNil(t, res.Receipt)
		assert.False(t, svc.GetStatus(ctx).Configured)
	})

	t.Run("printed", func(t *testing.T) {
		p := &recordingPrinter{}
		svc := NewReceiptService(env.clientRepo, p, "The Tap Room", 32, zap.NewNop())

		res, err := svc.PrintReceipt(ctx, ada.ID, session.ID)

		require.NoError(t, err)
		assert.True(t, res.Printed)
		require.Len(t, p.jobs, 1)
		out := string(p.jobs[0])
		assert.Contains(t, out, "2x Craft IPA")
		assert.Contains(t, out, "  @ 7.50 each")
		assert.Contains(t, out, "Credit Card")
		assert.True(t, strings.Contains(out, "TOTAL") && strings.Contains(out, "20.00"))
		assert.Equal(t, &PrinterStatus{Configured: true, Ready: true, Type: printer.KindNetwork}, svc.GetStatus(ctx))
	})

	t.Run("printer offline", func(t *testing.T) {
		svc := NewReceiptService(env.clientRepo, &recordingPrinter{err: errors.New("connection refused")}, "The Tap Room", 32, zap.NewNop())

		_, err := svc.PrintReceipt(ctx, ada.ID, session.ID)

		assert.Equal(t, http.StatusServiceUnavailable, apperror.GetAppError(err).Code)
	})
}

func TestFormatReceipt_GuestAndTimes(t *testing.T) {
	env := newTestEnv(t)
	ada, session := splitVisit(t, env)
	svc := NewReceiptService(env.clientRepo, printer.NewNullPrinter(), "The Tap Room", 32, zap.NewNop())
	r, err := svc.BuildReceipt(context.Background(), ada.ID, session.ID)
	require.NoError(t, err)

	out := string(FormatReceipt(r, 32))

	assert.Contains(t, out, "Guest:")
	assert.Contains(t, out, "Ada\n")
	assert.Contains(t, out, r.OpenedAt.Format("2006-01-02 15:04"))
	assert.Contains(t, out, "Thanks for stopping by!")
}
