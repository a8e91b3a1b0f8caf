package invoice

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/application/notification"
	"github.com/maillots/storefront/internal/domain/identity"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/maillots/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrPDFUnavailable is returned when no PDF renderer is configured
var ErrPDFUnavailable = shared.NewDomainError("PDF_UNAVAILABLE", "PDF invoices are not available")

//go:embed templates/invoice.html
var templateFS embed.FS

// PDFRenderer prints an HTML document to PDF
type PDFRenderer interface {
	RenderHTML(ctx context.Context, title, html string) ([]byte, error)
}

// Service assembles invoices from orders
type Service struct {
	orderRepo order.OrderRepository
	userRepo  identity.UserRepository
	renderer  PDFRenderer
	shopName  string
	tmpl      *template.Template
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates an invoice service. A nil renderer disables PDF output.
func NewService(
	orderRepo order.OrderRepository,
	userRepo identity.UserRepository,
	renderer PDFRenderer,
	shopName string,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	money := notification.NewRenderer(logger)
	tmpl := template.Must(template.New("invoice.html").Funcs(template.FuncMap{
		"fcfa": money.FormatFCFA,
		"date": func(t time.Time) string { return t.Format("02/01/2006") },
	}).ParseFS(templateFS, "templates/invoice.html"))

	return &Service{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		renderer:  renderer,
		shopName:  shopName,
		tmpl:      tmpl,
		logger:    logger,
		now:       time.Now,
	}
}

// PDFEnabled reports whether RenderPDF can succeed
func (s *Service) PDFEnabled() bool {
	return s.renderer != nil
}

// Build loads an order and assembles its invoice
func (s *Service) Build(ctx context.Context, orderID uuid.UUID) (*Data, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.fromOrder(ctx, o), nil
}

// BuildFor is Build restricted to the order owner unless the requester is staff.
// Other customers' orders look missing.
func (s *Service) BuildFor(ctx context.Context, orderID, requesterID uuid.UUID, isStaff bool) (*Data, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isStaff && o.UserID != requesterID {
		return nil, shared.ErrNotFound
	}
	return s.fromOrder(ctx, o), nil
}

func (s *Service) fromOrder(ctx context.Context, o *order.Order) *Data {
	data := &Data{
		Number:        NumberPrefix + o.OrderNumber,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		IssuedAt:      s.now(),
		OrderedAt:     o.CreatedAt,
		ShopName:      s.shopName,
		CustomerName:  o.ShippingAddress.FullName,
		Phone:         o.ShippingAddress.Phone,
		Address:       o.ShippingAddress.Address,
		City:          o.ShippingAddress.City,
		Subtotal:      o.Subtotal,
		ShippingCost:  o.ShippingCost,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod.DisplayName(),
		PaymentStatus: string(o.PaymentStatus),
		PaidAt:        o.PaidAt,
		Lines:         make([]Line, 0, len(o.Items)),
	}

	// the customer email is printed when the account still exists
	if s.userRepo != nil {
		if user, err := s.userRepo.FindByID(ctx, o.UserID); err == nil {
			data.CustomerEmail = user.Email
			if strings.TrimSpace(data.CustomerName) == "" {
				data.CustomerName = user.DisplayName()
			}
		} else if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Failed to load invoice customer",
				zap.String("order_number", o.OrderNumber),
				zap.Error(err))
		}
	}

	for _, item := range o.Items {
		line := Line{
			ProductName: item.ProductName,
			Size:        item.Size,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
			Total:       item.TotalWithCustomizations(),
		}
		for _, c := range item.Customizations {
			line.Customizations = append(line.Customizations, LineCustomization{
				Name:       c.Name,
				CustomText: c.CustomText,
				Price:      c.Price,
			})
		}
		data.Lines = append(data.Lines, line)
	}
	return data
}

// RenderHTML renders the invoice page
func (s *Service) RenderHTML(data *Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderPDF prints the invoice page to PDF
func (s *Service) RenderPDF(ctx context.Context, data *Data) ([]byte, error) {
	if s.renderer == nil {
		return nil, ErrPDFUnavailable
	}
	html, err := s.RenderHTML(data)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.RenderHTML(ctx, data.Number, string(html))
	if err != nil {
		s.logger.Error("Failed to render invoice PDF",
			zap.String("invoice", data.Number),
			zap.Error(err))
		return nil, err
	}
	return pdf, nil
}
