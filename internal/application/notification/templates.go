package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/maillots/storefront/internal/domain/notification"
	"github.com/maillots/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultTemplate is the built-in content of a template type
type DefaultTemplate struct {
	Type    notification.TemplateType
	Subject string
	HTML    string
	Text    string
}

// SeedResult counts what SeedDefaultTemplates did
type SeedResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// SeedDefaultTemplates stores the default template of every type.
// Existing templates are left alone unless overwrite is set.
func (s *EmailService) SeedDefaultTemplates(ctx context.Context, overwrite bool) (*SeedResult, error) {
	result := &SeedResult{}
	for _, def := range DefaultTemplates() {
		existing, err := s.templates.FindByType(ctx, def.Type)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			tmpl, err := notification.NewTemplate(def.Type, "", def.Subject, def.HTML, def.Text)
			if err != nil {
				return result, err
			}
			if err := s.templates.Save(ctx, tmpl); err != nil {
				return result, fmt.Errorf("failed to create %s template: %w", def.Type, err)
			}
			result.Created++
		case err != nil:
			return result, fmt.Errorf("failed to load %s template: %w", def.Type, err)
		case overwrite:
			existing.Name = def.Type.Label()
			existing.Subject = def.Subject
			existing.HTMLContent = def.HTML
			existing.TextContent = def.Text
			existing.IsActive = true
			if err := s.templates.Save(ctx, existing); err != nil {
				return result, fmt.Errorf("failed to update %s template: %w", def.Type, err)
			}
			result.Updated++
		default:
			result.Skipped++
		}
	}
	s.logger.Info("Email templates seeded",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// DefaultTemplates returns the built-in French templates, one per type
func DefaultTemplates() []DefaultTemplate {
	return []DefaultTemplate{
		{
			Type:    notification.TemplateOrderConfirmation,
			Subject: "Confirmation de votre commande #{order_number}",
			HTML: htmlLayout(`<h2>Merci pour votre commande, {{.customer_name}} !</h2>
<p>Votre commande <strong>#{{.order.order_number}}</strong> a bien été enregistrée.</p>
` + orderItemsHTML + `
<p>Sous-total : {{fcfa .order.subtotal}}<br>
Livraison : {{fcfa .order.shipping_cost}}<br>
<strong>Total : {{fcfa .order.total}}</strong></p>
<p>Mode de paiement : {{.order.payment_method}}</p>
<h3>Adresse de livraison</h3>
<p>{{.shipping_address.full_name}}<br>{{.shipping_address.address}}<br>{{.shipping_address.city}}<br>{{.shipping_address.phone}}</p>`),
			Text: `Merci pour votre commande, {{.customer_name}} !

Commande #{{.order.order_number}}
{{range .order_items}}- {{.product_name}} ({{.size}}) x{{.quantity}} : {{fcfa .total_price}}
{{end}}
Total : {{fcfa .order.total}}
Mode de paiement : {{.order.payment_method}}

Livraison : {{.shipping_address.full_name}}, {{.shipping_address.address}}, {{.shipping_address.city}}`,
		},
		{
			Type:    notification.TemplatePaymentConfirmation,
			Subject: "Paiement confirmé - Commande #{order_number}",
			HTML: htmlLayout(`<h2>Paiement reçu</h2>
<p>Bonjour {{.customer_name}},</p>
<p>Nous avons bien reçu votre paiement de <strong>{{fcfa .payment_amount}}</strong> par {{.payment_method}} pour la commande <strong>#{{.order.order_number}}</strong>.</p>
{{with .transaction_id}}<p>Référence de transaction : {{.}}</p>{{end}}
<p>Votre commande est en cours de préparation.</p>`),
			Text: `Bonjour {{.customer_name}},

Nous avons bien reçu votre paiement de {{fcfa .payment_amount}} par {{.payment_method}} pour la commande #{{.order.order_number}}.
Votre commande est en cours de préparation.`,
		},
		{
			Type:    notification.TemplateOrderShipped,
			Subject: "Votre commande #{order_number} est expédiée !",
			HTML: htmlLayout(`<h2>Votre commande est en route !</h2>
<p>Bonjour {{.customer_name}},</p>
<p>La commande <strong>#{{.order.order_number}}</strong> vient d'être expédiée à l'adresse suivante :</p>
<p>{{.shipping_address.full_name}}<br>{{.shipping_address.address}}<br>{{.shipping_address.city}}</p>
` + orderItemsHTML),
			Text: `Bonjour {{.customer_name}},

Votre commande #{{.order.order_number}} vient d'être expédiée.
Adresse : {{.shipping_address.address}}, {{.shipping_address.city}}`,
		},
		{
			Type:    notification.TemplateOrderDelivered,
			Subject: "Votre commande #{order_number} a été livrée",
			HTML: htmlLayout(`<h2>Commande livrée</h2>
<p>Bonjour {{.customer_name}},</p>
<p>Votre commande <strong>#{{.order.order_number}}</strong> a été livrée. Nous espérons que vos maillots vous plaisent !</p>`),
			Text: `Bonjour {{.customer_name}},

Votre commande #{{.order.order_number}} a été livrée. Nous espérons que vos maillots vous plaisent !`,
		},
		{
			Type:    notification.TemplateCartReminder,
			Subject: "Vous avez oublié quelque chose dans votre panier !",
			HTML: htmlLayout(`<h2>Votre panier vous attend</h2>
<p>Bonjour {{.customer_name}},</p>
<p>Vous avez laissé ces articles dans votre panier :</p>
<ul>
{{range .cart_items}}<li>{{.product_name}} ({{.size}}) x{{.quantity}} : {{fcfa .total_price}}</li>
{{end}}</ul>
<p>Total : <strong>{{fcfa .cart_total}}</strong></p>
<p>Finalisez votre commande avant que le stock ne s'épuise !</p>`),
			Text: `Bonjour {{.customer_name}},

Vous avez laissé ces articles dans votre panier :
{{range .cart_items}}- {{.product_name}} ({{.size}}) x{{.quantity}} : {{fcfa .total_price}}
{{end}}
Total : {{fcfa .cart_total}}`,
		},
		{
			Type:    notification.TemplateStockAlert,
			Subject: "Alerte: Stock faible pour {product_name}",
			HTML: htmlLayout(`<h2>Stock faible</h2>
<p>Bonjour {{.admin_name}},</p>
<p>Le produit <strong>{{.product_name}}</strong>{{with .product_category}} ({{.}}){{end}} n'a plus que <strong>{{.current_stock}}</strong> unité(s) en stock.</p>
<p>Prix : {{fcfa .product_price}}</p>
<p>Pensez à réapprovisionner.</p>`),
			Text: `Bonjour {{.admin_name}},

Le produit {{.product_name}} n'a plus que {{.current_stock}} unité(s) en stock.
Pensez à réapprovisionner.`,
		},
		{
			Type:    notification.TemplatePromotion,
			Subject: "Nos offres du moment sur les maillots",
			HTML: htmlLayout(`<h2>Offres spéciales</h2>
<p>Bonjour {{.customer_name}},</p>
<p>Découvrez nos maillots en promotion sur la boutique.</p>`),
			Text: `Bonjour {{.customer_name}},

Découvrez nos maillots en promotion sur la boutique.`,
		},
		{
			Type:    notification.TemplateWelcome,
			Subject: "Bienvenue chez Maillots Football !",
			HTML: htmlLayout(`<h2>Bienvenue {{.customer_name}} !</h2>
<p>Votre compte a bien été créé. Retrouvez les maillots de vos équipes préférées, personnalisés à votre nom.</p>`),
			Text: `Bienvenue {{.customer_name}} !

Votre compte a bien été créé.`,
		},
	}
}

const orderItemsHTML = `<table style="width:100%;border-collapse:collapse">
<tr><th align="left">Article</th><th>Taille</th><th>Qté</th><th align="right">Total</th></tr>
{{range .order_items}}<tr>
<td>{{.product_name}}{{range .customizations}}<br><small>{{.name}}{{with .custom_text}} : {{.}}{{end}}</small>{{end}}</td>
<td align="center">{{.size}}</td>
<td align="center">{{.quantity}}</td>
<td align="right">{{fcfa .total_price}}</td>
</tr>
{{end}}</table>`

func htmlLayout(body string) string {
	return `<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"></head>
<body style="font-family:Arial,sans-serif;color:#222;max-width:600px;margin:auto">
<div style="background:#0b3d2e;color:#fff;padding:16px;text-align:center"><h1 style="margin:0">Maillots Football</h1></div>
<div style="padding:16px">
` + body + `
</div>
<p style="font-size:12px;color:#777;text-align:center">Maillots Football - Dakar, Sénégal</p>
</body>
</html>`
}
