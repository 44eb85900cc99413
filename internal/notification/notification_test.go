package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dzgamezone-be/internal/metrics"
	"dzgamezone-be/internal/order"
	"dzgamezone-be/internal/shipping"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []Message
	err   error
	delay time.Duration
}

func (f *fakeSender) Send(ctx context.Context, msg Message) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func sampleOrder() *order.Order {
	return &order.Order{
		ID:            "o1",
		Reference:     "CMD-20261018-093000-000-0001",
		Product:       &order.ProductSummary{ID: "p1", Name: "PS5 Slim", Slug: "ps5-slim"},
		VariantName:   "Noir",
		Quantity:      2,
		CustomerPhone: "0770123456",
		CustomerEmail: "amine@example.dz",
		Wilaya:        "Alger",
		DeliveryType:  shipping.DeliveryDomicile,
		Address:       "12 rue Didouche Mourad",
		ProductPrice:  17000,
		ShippingFee:   0,
		TotalPrice:    34000,
		Status:        order.StatusPending,
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "34 000 DA", FormatAmount(34000))
	assert.Equal(t, "500 DA", FormatAmount(500))
	assert.Equal(t, "1 250 000 DA", FormatAmount(1250000))
}

func TestPlacedMessage(t *testing.T) {
	t.Run("FreeShipping", func(t *testing.T) {
		msg, err := PlacedMessage(sampleOrder())

		require.NoError(t, err)
		assert.Equal(t, []string{"amine@example.dz"}, msg.To)
		assert.Contains(t, msg.Subject, ShopName)
		assert.Contains(t, msg.HTML, "PS5 Slim (Noir)")
		assert.Contains(t, msg.HTML, "GRATUITE")
		assert.Contains(t, msg.HTML, "34 000 DA")
		assert.Contains(t, msg.HTML, "Aucune")
		assert.Contains(t, msg.HTML, "0770123456")
	})

	t.Run("PaidShippingAndEscaping", func(t *testing.T) {
		o := sampleOrder()
		o.ShippingFee = 600
		o.TotalPrice = 34600
		o.DeliveryType = shipping.DeliveryAgence
		o.Note = "<b>appeler avant</b>"

		msg, err := PlacedMessage(o)

		require.NoError(t, err)
		assert.NotContains(t, msg.HTML, "GRATUITE")
		assert.Contains(t, msg.HTML, "600 DA")
		assert.Contains(t, msg.HTML, "en agence")
		assert.Contains(t, msg.HTML, "&lt;b&gt;appeler avant&lt;/b&gt;")
	})
}

func TestStatusMessage(t *testing.T) {
	o := sampleOrder()

	o.Status = order.StatusConfirmed
	msg, err := StatusMessage(o)
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, "confirmée")

	o.Status = order.StatusShipped
	msg, err = StatusMessage(o)
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, "expédiée")

	o.Status = order.StatusDelivered
	_, err = StatusMessage(o)
	assert.Error(t, err)
}

func TestNotifier(t *testing.T) {
	t.Run("SendsInBackground", func(t *testing.T) {
		sender := &fakeSender{}
		reg := metrics.NewRegistry()
		n := NewNotifier(sender, reg, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		n.OrderPlaced(ctx, sampleOrder())
		cancel()
		n.Wait()

		require.Len(t, sender.sent, 1)
		assert.Equal(t, uint64(1), reg.Counter(MetricSent).Load())
	})

	t.Run("FailureIsCounted", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("535 authentication failed")}
		reg := metrics.NewRegistry()
		n := NewNotifier(sender, reg, time.Second)

		o := sampleOrder()
		o.Status = order.StatusShipped
		n.StatusChanged(context.Background(), o)
		n.Wait()

		assert.Equal(t, uint64(0), reg.Counter(MetricSent).Load())
		assert.Equal(t, uint64(1), reg.Counter(MetricFailed).Load())
	})

	t.Run("Timeout", func(t *testing.T) {
		sender := &fakeSender{delay: time.Second}
		reg := metrics.NewRegistry()
		n := NewNotifier(sender, reg, 10*time.Millisecond)

		n.OrderPlaced(context.Background(), sampleOrder())
		n.Wait()

		assert.Equal(t, uint64(1), reg.Counter(MetricFailed).Load())
	})

	t.Run("UnsupportedStatusNotSent", func(t *testing.T) {
		sender := &fakeSender{}
		reg := metrics.NewRegistry()
		n := NewNotifier(sender, reg, time.Second)

		o := sampleOrder()
		o.Status = order.StatusDelivered
		n.StatusChanged(context.Background(), o)
		n.Wait()

		assert.Empty(t, sender.sent)
		assert.Equal(t, uint64(1), reg.Counter(MetricFailed).Load())
	})
}

func TestSMTPSender_Unreachable(t *testing.T) {
	s := NewSMTPSender(ShopName, "shop@example.dz", "127.0.0.1", "1", "", "")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, s.Send(ctx, Message{To: []string{"a@b.dz"}, Subject: "x", HTML: "<p>x</p>"}))
}
