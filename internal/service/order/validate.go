package order

import (
	"fmt"
	"net/mail"
	"regexp"

	"github.com/msvetlov/shopping_api/internal/transport"
)

var phoneRe = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{5,19}$`)

func validateOrder(req transport.CreateOrderRequest) []string {
	var fields []string

	if req.CustomerName == "" {
		fields = append(fields, "customer_name is required")
	} else if len(req.CustomerName) > 100 {
		fields = append(fields, "customer_name is too long")
	}

	if req.ShippingAddress == "" {
		fields = append(fields, "shipping_address is required")
	} else if len(req.ShippingAddress) > 250 {
		fields = append(fields, "shipping_address is too long")
	}

	if req.BillingAddress == "" {
		fields = append(fields, "billing_address is required")
	} else if len(req.BillingAddress) > 250 {
		fields = append(fields, "billing_address is too long")
	}

	if req.PhoneNumber == "" {
		fields = append(fields, "phone_number is required")
	} else if !phoneRe.MatchString(req.PhoneNumber) {
		fields = append(fields, "phone_number is not a valid phone number")
	}

	if req.Email == "" {
		fields = append(fields, "email is required")
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		fields = append(fields, "email is not a valid email address")
	}

	if len(req.Items) == 0 {
		fields = append(fields, "order_items must not be empty")
	}
	for i, it := range req.Items {
		if it.ProductID == 0 {
			fields = append(fields, fmt.Sprintf("order_items[%d]: product_id is required", i))
		}
		if it.Quantity <= 0 {
			fields = append(fields, fmt.Sprintf("order_items[%d]: quantity must be > 0", i))
		}
	}

	return fields
}
