package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/cart"
	"github.com/maillots/storefront/internal/domain/catalog"
	"github.com/maillots/storefront/internal/domain/identity"
	"github.com/maillots/storefront/internal/domain/notification"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/payment"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/maillots/storefront/internal/infrastructure/config"
	"github.com/maillots/storefront/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	sent []notification.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg notification.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type serviceFixture struct {
	svc       *EmailService
	templates *testutil.MockTemplateRepository
	logs      *testutil.MockEmailLogRepository
	users     *testutil.MockUserRepository
	orders    *testutil.MockOrderRepository
	carts     *testutil.MockCartRepository
	mailer    *recordingMailer
	created   []*notification.Log
	now       time.Time
}

func testEmailConfig() config.EmailConfig {
	return config.EmailConfig{
		FromEmail:                "boutique@maillots.sn",
		FromName:                 "Maillots Football",
		IsActive:                 true,
		SendOrderConfirmation:    true,
		SendPaymentConfirmation:  true,
		SendShippingNotification: true,
		SendCartReminder:         true,
		SendStockAlert:           true,
		MaxEmailsPerHour:         100,
		CartReminderDelayHours:   24,
	}
}

func newServiceFixture(t *testing.T, cfg config.EmailConfig) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		templates: new(testutil.MockTemplateRepository),
		logs:      new(testutil.MockEmailLogRepository),
		users:     new(testutil.MockUserRepository),
		orders:    new(testutil.MockOrderRepository),
		carts:     new(testutil.MockCartRepository),
		mailer:    &recordingMailer{},
		now:       time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewEmailService(cfg, f.templates, f.logs, f.users, f.orders, f.carts, f.mailer, nil)
	f.svc.now = func() time.Time { return f.now }

	f.logs.On("Create", mock.Anything, mock.AnythingOfType("*notification.Log")).
		Run(func(args mock.Arguments) {
			f.created = append(f.created, args.Get(1).(*notification.Log))
		}).Return(nil).Maybe()
	f.logs.On("Update", mock.Anything, mock.AnythingOfType("*notification.Log")).Return(nil).Maybe()
	f.logs.On("CountSentSince", mock.Anything, f.now.Add(-time.Hour)).Return(int64(0), nil).Maybe()
	return f
}

func (f *serviceFixture) withTemplate(t *testing.T, typ notification.TemplateType) *notification.Template {
	t.Helper()
	for _, def := range DefaultTemplates() {
		if def.Type != typ {
			continue
		}
		tmpl, err := notification.NewTemplate(def.Type, "", def.Subject, def.HTML, def.Text)
		require.NoError(t, err)
		f.templates.On("FindActiveByType", mock.Anything, typ).Return(tmpl, nil)
		return tmpl
	}
	t.Fatalf("no default template for %s", typ)
	return nil
}

func testCustomer(t *testing.T) *identity.User {
	t.Helper()
	u, err := identity.NewUser("awa.diop@example.sn", "Awa", "Diop")
	require.NoError(t, err)
	return u
}

func testOrder(t *testing.T, userID uuid.UUID) *order.Order {
	t.Helper()
	o, err := order.NewOrder("CMD20260314100000123", userID, order.PaymentMethodPayDunya, order.ShippingAddress{
		FullName: "Awa Diop",
		Phone:    "+221771234567",
		Address:  "Rue 10, Médina",
		City:     "Dakar",
	})
	require.NoError(t, err)
	item, err := order.NewItem(o.ID, uuid.New(), "Maillot Sénégal Domicile", "L", 2, decimal.NewFromInt(12000))
	require.NoError(t, err)
	item.AddCustomization(uuid.New(), "Nom personnalisé", "MANE", 1, decimal.NewFromInt(2000))
	o.AddItem(*item)
	o.RecalculateTotals()
	require.NoError(t, o.SetShippingCost(decimal.Zero))
	return o
}

func TestEmailService_SendOrderConfirmation(t *testing.T) {
	ctx := context.Background()

	t.Run("renders, sends and marks the log sent", func(t *testing.T) {
		f := newServiceFixture(t, testEmailConfig())
		f.withTemplate(t, notification.TemplateOrderConfirmation)
		user := testCustomer(t)
		o := testOrder(t, user.ID)
		f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		sent, err := f.svc.SendOrderConfirmation(ctx, o)
		require.NoError(t, err)
		assert.True(t, sent)

		require.Len(t, f.mailer.sent, 1)
		msg := f.mailer.sent[0]
		assert.Equal(t, "awa.diop@example.sn", msg.To)
		assert.Equal(t, "Awa Diop", msg.ToName)
		assert.Equal(t, "Maillots Football", msg.FromName)
		assert.Equal(t, "Confirmation de votre commande #"+o.OrderNumber, msg.Subject)
		assert.Contains(t, msg.HTML, "Merci pour votre commande, Awa Diop")
		assert.Contains(t, msg.HTML, "Maillot Sénégal Domicile")
		assert.Contains(t, msg.HTML, "MANE")
		assert.Contains(t, msg.Text, "Commande #"+o.OrderNumber)

		require.Len(t, f.created, 1)
		entry := f.created[0]
		assert.Equal(t, notification.LogStatusSent, entry.Status)
		require.NotNil(t, entry.SentAt)
		assert.Equal(t, f.now, *entry.SentAt)
		assert.Equal(t, o.ID, *entry.OrderID)
		assert.Equal(t, user.ID, *entry.UserID)
		assert.Nil(t, entry.PaymentID)
	})

	t.Run("switched off sends nothing", func(t *testing.T) {
		cfg := testEmailConfig()
		cfg.SendOrderConfirmation = false
		f := newServiceFixture(t, cfg)

		sent, err := f.svc.SendOrderConfirmation(ctx, testOrder(t, uuid.New()))
		require.NoError(t, err)
		assert.False(t, sent)
		assert.Empty(t, f.created)
		f.templates.AssertNotCalled(t, "FindActiveByType", mock.Anything, mock.Anything)
	})

	t.Run("missing template sends nothing", func(t *testing.T) {
		f := newServiceFixture(t, testEmailConfig())
		f.templates.On("FindActiveByType", mock.Anything, notification.TemplateOrderConfirmation).
			Return(nil, shared.ErrNotFound)

		sent, err := f.svc.SendOrderConfirmation(ctx, testOrder(t, uuid.New()))
		require.NoError(t, err)
		assert.False(t, sent)
		assert.Empty(t, f.created)
	})

	t.Run("template lookup failure is returned", func(t *testing.T) {
		f := newServiceFixture(t, testEmailConfig())
		f.templates.On("FindActiveByType", mock.Anything, notification.TemplateOrderConfirmation).
			Return(nil, errors.New("connection refused"))

		_, err := f.svc.SendOrderConfirmation(ctx, testOrder(t, uuid.New()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("inactive system logs a failure", func(t *testing.T) {
		cfg := testEmailConfig()
		cfg.IsActive = false
		f := newServiceFixture(t, cfg)
		f.withTemplate(t, notification.TemplateOrderConfirmation)
		user := testCustomer(t)
		f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		sent, err := f.svc.SendOrderConfirmation(ctx, testOrder(t, user.ID))
		require.NoError(t, err)
		assert.False(t, sent)
		assert.Empty(t, f.mailer.sent)
		require.Len(t, f.created, 1)
		assert.Equal(t, notification.LogStatusFailed, f.created[0].Status)
		assert.Equal(t, ErrEmailSystemDisabled, f.created[0].ErrorMessage)
	})

	t.Run("mailer error logs a failure", func(t *testing.T) {
		f := newServiceFixture(t, testEmailConfig())
		f.mailer.err = errors.New("535 authentication failed")
		f.withTemplate(t, notification.TemplateOrderConfirmation)
		user := testCustomer(t)
		f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		sent, err := f.svc.SendOrderConfirmation(ctx, testOrder(t, user.ID))
		require.NoError(t, err)
		assert.False(t, sent)
		require.Len(t, f.created, 1)
		assert.Equal(t, notification.LogStatusFailed, f.created[0].Status)
		assert.Equal(t, "535 authentication failed", f.created[0].ErrorMessage)
		assert.Nil(t, f.created[0].SentAt)
	})
}

func TestEmailService_HourlyQuota(t *testing.T) {
	ctx := context.Background()
	cfg := testEmailConfig()
	cfg.MaxEmailsPerHour = 3

	f := newServiceFixture(t, cfg)
	f.logs.ExpectedCalls = nil
	f.logs.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			f.created = append(f.created, args.Get(1).(*notification.Log))
		}).Return(nil)
	f.logs.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("CountSentSince", mock.Anything, f.now.Add(-time.Hour)).Return(int64(3), nil)

	f.withTemplate(t, notification.TemplateOrderShipped)
	user := testCustomer(t)
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	sent, err := f.svc.SendShippingNotification(ctx, testOrder(t, user.ID))
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, f.mailer.sent)
	require.Len(t, f.created, 1)
	assert.Equal(t, ErrHourlyQuotaExceeded, f.created[0].ErrorMessage)
}

func TestLogQuota_Allow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("unlimited when max is zero", func(t *testing.T) {
		logs := new(testutil.MockEmailLogRepository)
		ok, err := NewLogQuota(logs, 0, clock).Allow(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		logs.AssertNotCalled(t, "CountSentSince", mock.Anything, mock.Anything)
	})

	t.Run("counts the last hour", func(t *testing.T) {
		logs := new(testutil.MockEmailLogRepository)
		logs.On("CountSentSince", mock.Anything, now.Add(-time.Hour)).Return(int64(9), nil).Once()
		logs.On("CountSentSince", mock.Anything, now.Add(-time.Hour)).Return(int64(10), nil).Once()
		quota := NewLogQuota(logs, 10, clock)

		ok, err := quota.Allow(ctx)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = quota.Allow(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestEmailService_NotifyPaymentCompleted(t *testing.T) {
	ctx := context.Background()
	user := testCustomer(t)

	completedPayment := func(t *testing.T, o *order.Order) *payment.Payment {
		p, err := payment.NewPayment(o)
		require.NoError(t, err)
		p.TransactionID = "PD-778899"
		p.Complete(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
		return p
	}

	t.Run("pending payment is ignored", func(t *testing.T) {
		f := newServiceFixture(t, testEmailConfig())
		p, err := payment.NewPayment(testOrder(t, user.ID))
		require.NoError(t, err)

		sent, err := f.svc.NotifyPaymentCompleted(ctx, p)
		require.NoError(t, err)
		assert.False(t, sent)
		f.logs.AssertNotCalled(t, "ExistsSentForPayment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already confirmed is not sent twice", func(t *testing.T) {
		f := newServiceFixture(t, testEmailConfig())
		p := completedPayment(t, testOrder(t, user.ID))
		f.logs.On("ExistsSentForPayment", mock.Anything, p.ID, notification.TemplatePaymentConfirmation).Return(true, nil)

		sent, err := f.svc.NotifyPaymentCompleted(ctx, p)
		require.NoError(t, err)
		assert.False(t, sent)
		assert.Empty(t, f.mailer.sent)
	})

	t.Run("first completion sends the receipt", func(t *testing.T) {
		f := newServiceFixture(t, testEmailConfig())
		o := testOrder(t, user.ID)
		p := completedPayment(t, o)
		f.logs.On("ExistsSentForPayment", mock.Anything, p.ID, notification.TemplatePaymentConfirmation).Return(false, nil)
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		f.withTemplate(t, notification.TemplatePaymentConfirmation)

		sent, err := f.svc.NotifyPaymentCompleted(ctx, p)
		require.NoError(t, err)
		assert.True(t, sent)

		require.Len(t, f.mailer.sent, 1)
		msg := f.mailer.sent[0]
		assert.Equal(t, "Paiement confirmé - Commande #"+o.OrderNumber, msg.Subject)
		assert.Contains(t, msg.HTML, "PD-778899")
		assert.Contains(t, msg.HTML, "FCFA")
		require.Len(t, f.created, 1)
		assert.Equal(t, p.ID, *f.created[0].PaymentID)
	})
}

func TestEmailService_SendStockAlert(t *testing.T) {
	ctx := context.Background()
	product, err := catalog.NewProduct("Maillot PSG Extérieur", decimal.NewFromInt(30000), 3)
	require.NoError(t, err)

	t.Run("alerts every staff member", func(t *testing.T) {
		f := newServiceFixture(t, testEmailConfig())
		f.withTemplate(t, notification.TemplateStockAlert)
		admin1, _ := identity.NewUser("moussa@maillots.sn", "Moussa", "Fall")
		admin2, _ := identity.NewUser("fatou@maillots.sn", "Fatou", "Ndiaye")
		f.users.On("FindActiveStaff", mock.Anything).Return([]identity.User{*admin1, *admin2}, nil)

		sent, err := f.svc.SendStockAlert(ctx, product, 3)
		require.NoError(t, err)
		assert.True(t, sent)
		require.Len(t, f.mailer.sent, 2)
		assert.Equal(t, "Alerte: Stock faible pour Maillot PSG Extérieur", f.mailer.sent[0].Subject)
		assert.Contains(t, f.mailer.sent[1].HTML, "Fatou Ndiaye")
		assert.Contains(t, f.mailer.sent[1].Text, "3 unité(s)")
	})

	t.Run("no staff means no alert", func(t *testing.T) {
		f := newServiceFixture(t, testEmailConfig())
		f.withTemplate(t, notification.TemplateStockAlert)
		f.users.On("FindActiveStaff", mock.Anything).Return([]identity.User{}, nil)

		sent, err := f.svc.SendStockAlert(ctx, product, 3)
		require.NoError(t, err)
		assert.False(t, sent)
	})

	t.Run("switched off", func(t *testing.T) {
		cfg := testEmailConfig()
		cfg.SendStockAlert = false
		f := newServiceFixture(t, cfg)

		sent, err := f.svc.SendStockAlert(ctx, product, 3)
		require.NoError(t, err)
		assert.False(t, sent)
	})
}

func TestEmailService_SendCartReminders(t *testing.T) {
	ctx := context.Background()
	product, err := catalog.NewProduct("Maillot Real Madrid", decimal.NewFromInt(25000), 10)
	require.NoError(t, err)

	reminded := testCustomer(t)
	fresh, err := identity.NewUser("ibou@example.sn", "Ibrahima", "Sow")
	require.NoError(t, err)

	c, err := cart.NewCart(fresh.ID)
	require.NoError(t, err)
	_, err = c.AddItem(product, "M", 1)
	require.NoError(t, err)

	setup := func(t *testing.T) *serviceFixture {
		f := newServiceFixture(t, testEmailConfig())
		cutoff := f.now.Add(-24 * time.Hour)
		f.carts.On("FindUsersWithItemsBefore", mock.Anything, cutoff).Return([]uuid.UUID{reminded.ID, fresh.ID}, nil)
		f.carts.On("FindItemsBefore", mock.Anything, mock.Anything, cutoff).Return(c.Items, nil)
		f.logs.On("ExistsForUserSince", mock.Anything, reminded.ID, notification.TemplateCartReminder, cutoff).Return(true, nil)
		f.logs.On("ExistsForUserSince", mock.Anything, fresh.ID, notification.TemplateCartReminder, cutoff).Return(false, nil)
		return f
	}

	t.Run("dry run only counts", func(t *testing.T) {
		f := setup(t)

		result, err := f.svc.SendCartReminders(ctx, 24, true)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Candidates)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 1, result.WouldSend)
		assert.Equal(t, 0, result.Sent)
		assert.Equal(t, []uuid.UUID{fresh.ID}, result.Recipients)
		assert.Empty(t, f.mailer.sent)
	})

	t.Run("sends to users not yet reminded", func(t *testing.T) {
		f := setup(t)
		f.withTemplate(t, notification.TemplateCartReminder)
		f.users.On("FindByID", mock.Anything, fresh.ID).Return(fresh, nil)

		result, err := f.svc.SendCartReminders(ctx, 24, false)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Sent)
		assert.Equal(t, 1, result.Skipped)
		require.Len(t, f.mailer.sent, 1)
		assert.Equal(t, "ibou@example.sn", f.mailer.sent[0].To)
		assert.Contains(t, f.mailer.sent[0].HTML, "Maillot Real Madrid")
		assert.Equal(t, notification.TemplateCartReminder, f.created[0].TemplateType)
	})

	t.Run("rejects non positive hours", func(t *testing.T) {
		f := newServiceFixture(t, testEmailConfig())
		_, err := f.svc.SendCartReminders(ctx, 0, true)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestEmailService_SeedDefaultTemplates(t *testing.T) {
	ctx := context.Background()
	existing, err := notification.NewTemplate(notification.TemplateWelcome, "Ancien", "Salut", "<p>old</p>", "")
	require.NoError(t, err)

	setup := func(t *testing.T) *serviceFixture {
		f := newServiceFixture(t, testEmailConfig())
		f.templates.On("FindByType", mock.Anything, notification.TemplateWelcome).Return(existing, nil)
		f.templates.On("FindByType", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
		f.templates.On("Save", mock.Anything, mock.Anything).Return(nil)
		return f
	}

	t.Run("keeps existing templates", func(t *testing.T) {
		f := setup(t)
		result, err := f.svc.SeedDefaultTemplates(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, len(notification.AllTemplateTypes)-1, result.Created)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 0, result.Updated)
		assert.Equal(t, "Salut", existing.Subject)
	})

	t.Run("overwrite replaces content", func(t *testing.T) {
		f := setup(t)
		result, err := f.svc.SeedDefaultTemplates(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Updated)
		assert.Equal(t, "Bienvenue chez Maillots Football !", existing.Subject)
		assert.Equal(t, "Email de bienvenue", existing.Name)
	})
}

func TestDefaultTemplates_CoverEveryType(t *testing.T) {
	r := NewRenderer(nil)
	seen := map[notification.TemplateType]bool{}
	for _, def := range DefaultTemplates() {
		seen[def.Type] = true
		_, err := notification.NewTemplate(def.Type, "", def.Subject, def.HTML, def.Text)
		require.NoError(t, err, def.Type)
		require.NoError(t, r.Check(def.HTML, def.Text), def.Type)
	}
	for _, typ := range notification.AllTemplateTypes {
		assert.True(t, seen[typ], "missing default for %s", typ)
	}
}
