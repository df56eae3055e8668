package rentaldeskv1

type Session struct {
	StaffId             string `json:"staff_id"`
	BranchId            string `json:"branch_id"`
	Name                string `json:"name"`
	IsSuperAdmin        bool   `json:"is_super_admin"`
	TaxEnabled          bool   `json:"tax_enabled"`
	TaxRatePercent      string `json:"tax_rate_percent"`
	TaxFixedAmountCents int64  `json:"tax_fixed_amount_cents"`
	TaxInclusive        bool   `json:"tax_inclusive"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	Session      *Session `json:"session"`
}

type GetSessionRequest struct{}

type GetSessionResponse struct {
	Session *Session `json:"session"`
}

type Customer struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type OrderItem struct {
	Id               string `json:"id"`
	PhotoUrl         string `json:"photo_url"`
	ProductName      string `json:"product_name"`
	Quantity         int32  `json:"quantity"`
	PricePerDayCents int64  `json:"price_per_day_cents"`
	Days             int32  `json:"days"`
	LineTotalCents   int64  `json:"line_total_cents"`
	ReturnStatus     string `json:"return_status"`
}

type Order struct {
	Id              string       `json:"id"`
	InvoiceNumber   string       `json:"invoice_number"`
	BranchId        string       `json:"branch_id"`
	StaffId         string       `json:"staff_id"`
	Customer        *Customer    `json:"customer"`
	Items           []*OrderItem `json:"items"`
	StartDate       string       `json:"start_date"`
	StartDateTime   string       `json:"start_date_time,omitempty"`
	EndDate         string       `json:"end_date"`
	EndDateTime     string       `json:"end_date_time,omitempty"`
	Status          string       `json:"status"`
	Category        string       `json:"category"`
	Actions         []string     `json:"actions"`
	SubtotalCents   int64        `json:"subtotal_cents"`
	TaxCents        int64        `json:"tax_cents"`
	GrandTotalCents int64        `json:"grand_total_cents"`
	LateFeeCents    *int64       `json:"late_fee_cents,omitempty"`
	CreatedOn       string       `json:"created_on"`
	UpdatedOn       string       `json:"updated_on"`
}

// ListOrdersRequest filters orders. Empty fields are not filtered on; dates
// are yyyy-mm-dd and bound the order start date inclusively.
type ListOrdersRequest struct {
	BranchId string `json:"branch_id,omitempty"`
	Category string `json:"category,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
	Search   string `json:"search,omitempty"`
	Page     int32  `json:"page"`
	PageSize int32  `json:"page_size"`
}

type ListOrdersResponse struct {
	Orders   []*Order `json:"orders"`
	Total    int32    `json:"total"`
	Page     int32    `json:"page"`
	PageSize int32    `json:"page_size"`
	HasMore  bool     `json:"has_more"`
}

type GetOrderStatsRequest struct {
	BranchId string `json:"branch_id,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
}

type GetOrderStatsResponse struct {
	Total      int32            `json:"total"`
	ByCategory map[string]int32 `json:"by_category"`
}

type GetOrderRequest struct {
	Id string `json:"id"`
}

type OrderItemInput struct {
	PhotoUrl         string `json:"photo_url"`
	ProductName      string `json:"product_name"`
	Quantity         int32  `json:"quantity"`
	PricePerDayCents int64  `json:"price_per_day_cents"`
}

// CreateOrderRequest carries a finished draft. Start and end are ISO-8601
// timestamps; a missing start means now.
type CreateOrderRequest struct {
	CustomerId    string            `json:"customer_id"`
	InvoiceNumber string            `json:"invoice_number"`
	StartDate     string            `json:"start_date,omitempty"`
	EndDate       string            `json:"end_date"`
	Items         []*OrderItemInput `json:"items"`
}

type UpdateOrderStatusRequest struct {
	Id           string `json:"id"`
	Status       string `json:"status"`
	LateFeeCents *int64 `json:"late_fee_cents,omitempty"`
}

type OrderResponse struct {
	Order *Order `json:"order"`
}
