package transport

// CreateOrderItem names a product and how many units of it the
// customer wants.
type CreateOrderItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateOrderRequest struct {
	CustomerName    string            `json:"customer_name"`
	ShippingAddress string            `json:"shipping_address"`
	BillingAddress  string            `json:"billing_address"`
	PhoneNumber     string            `json:"phone_number"`
	Email           string            `json:"email"`
	Items           []CreateOrderItem `json:"order_items"`
}

// UpdateOrderRequest replaces the whole order: customer fields and the
// complete item list. ID must match the path parameter.
type UpdateOrderRequest struct {
	ID uint `json:"id"`
	CreateOrderRequest
}

// OrderItemResponse carries the frozen line total next to the
// product's current name and price, looked up at read time.
type OrderItemResponse struct {
	ID           uint   `json:"id"`
	ProductID    uint   `json:"product_id"`
	Quantity     int    `json:"quantity"`
	LineTotal    int64  `json:"line_total"`
	ProductName  string `json:"product_name"`
	ProductPrice int64  `json:"product_price"`
}

type OrderResponse struct {
	ID              uint                `json:"id"`
	CustomerName    string              `json:"customer_name"`
	ShippingAddress string              `json:"shipping_address"`
	BillingAddress  string              `json:"billing_address"`
	PhoneNumber     string              `json:"phone_number"`
	Email           string              `json:"email"`
	TotalPrice      int64               `json:"total_price"`
	Items           []OrderItemResponse `json:"order_items"`
}

type ProductSummaryRow struct {
	ProductName  string `json:"product_name"`
	TotalOrdered int    `json:"total_ordered"`
}
