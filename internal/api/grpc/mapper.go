package grpc

import (
	"time"

	pb "rentaldesk-backend/api/gen/v1"
	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/service"
)

func MapStaffContextToProto(s *domain.StaffContext) *pb.Session {
	if s == nil {
		return nil
	}
	return &pb.Session{
		StaffId:             s.StaffID,
		BranchId:            s.BranchID,
		Name:                s.Name,
		IsSuperAdmin:        s.IsSuperAdmin,
		TaxEnabled:          s.Tax.Enabled,
		TaxRatePercent:      s.Tax.RatePercent.String(),
		TaxFixedAmountCents: s.Tax.FixedAmountCents,
		TaxInclusive:        s.Tax.Inclusive,
	}
}

func MapOrderViewToProto(v *service.OrderView) *pb.Order {
	if v == nil {
		return nil
	}
	o := v.Order
	items := make([]*pb.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, &pb.OrderItem{
			Id:               it.ID,
			PhotoUrl:         it.PhotoURL,
			ProductName:      it.ProductName,
			Quantity:         it.Quantity,
			PricePerDayCents: it.PricePerDayCents,
			Days:             it.Days,
			LineTotalCents:   it.LineTotalCents,
			ReturnStatus:     string(it.ReturnStatus),
		})
	}
	actions := make([]string, 0, len(v.Actions))
	for _, a := range v.Actions {
		actions = append(actions, string(a))
	}

	return &pb.Order{
		Id:            o.ID,
		InvoiceNumber: o.InvoiceNumber,
		BranchId:      o.BranchID,
		StaffId:       o.StaffID,
		Customer: &pb.Customer{
			Id:    o.Customer.ID,
			Name:  o.Customer.Name,
			Phone: o.Customer.Phone,
		},
		Items:           items,
		StartDate:       o.StartDate,
		StartDateTime:   o.StartDateTime,
		EndDate:         o.EndDate,
		EndDateTime:     o.EndDateTime,
		Status:          string(o.Status),
		Category:        string(v.Category),
		Actions:         actions,
		SubtotalCents:   o.SubtotalCents,
		TaxCents:        o.TaxCents,
		GrandTotalCents: o.GrandTotalCents,
		LateFeeCents:    o.LateFeeCents,
		CreatedOn:       formatTime(o.CreatedOn),
		UpdatedOn:       formatTime(o.UpdatedOn),
	}
}

func MapOrderStatsToProto(s *domain.OrderStats) *pb.GetOrderStatsResponse {
	byCategory := make(map[string]int32, len(s.ByCategory))
	for c, n := range s.ByCategory {
		byCategory[string(c)] = n
	}
	return &pb.GetOrderStatsResponse{Total: s.Total, ByCategory: byCategory}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
