package notification

import (
	"github.com/maillots/storefront/internal/domain/cart"
	"github.com/maillots/storefront/internal/domain/identity"
	"github.com/maillots/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

func orderData(o *order.Order, user *identity.User) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, item := range o.Items {
		customizations := make([]map[string]any, 0, len(item.Customizations))
		for _, c := range item.Customizations {
			customizations = append(customizations, map[string]any{
				"name":        c.Name,
				"custom_text": c.CustomText,
				"quantity":    c.Quantity,
				"price":       c.Price,
			})
		}
		items = append(items, map[string]any{
			"product_name":   item.ProductName,
			"size":           item.Size,
			"quantity":       item.Quantity,
			"price":          item.Price,
			"total_price":    item.TotalPrice,
			"customizations": customizations,
		})
	}
	return map[string]any{
		"customer_name": user.FullName(),
		"order": map[string]any{
			"order_number":   o.OrderNumber,
			"status":         string(o.Status),
			"payment_status": string(o.PaymentStatus),
			"payment_method": o.PaymentMethod.DisplayName(),
			"subtotal":       o.Subtotal,
			"shipping_cost":  o.ShippingCost,
			"total":          o.Total,
			"notes":          o.Notes,
		},
		"order_items": items,
		"order_total": o.Total,
		"shipping_address": map[string]any{
			"full_name": o.ShippingAddress.FullName,
			"phone":     o.ShippingAddress.Phone,
			"address":   o.ShippingAddress.Address,
			"city":      o.ShippingAddress.City,
		},
	}
}

func cartItemsData(items []cart.Item) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any{
			"product_name": item.ProductName,
			"size":         item.Size,
			"quantity":     item.Quantity,
			"price":        item.Price,
			"total_price":  item.TotalPrice,
		})
	}
	return out
}

func cartItemsTotal(items []cart.Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	return total
}
