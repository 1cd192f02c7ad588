package services

import (
	"context"
	"time"

	"hospital-meal-api/models"
)

type ReportPeriod string

const (
	PeriodAll     ReportPeriod = "all"
	PeriodDaily   ReportPeriod = "daily"
	PeriodMonthly ReportPeriod = "monthly"
	PeriodYearly  ReportPeriod = "yearly"
)

// Report summarizes the orders placed in one period.
type Report struct {
	Period     ReportPeriod               `json:"period"`
	From       *time.Time                 `json:"from,omitempty"`
	To         *time.Time                 `json:"to,omitempty"`
	OrderCount int                        `json:"order_count"`
	Income     float64                    `json:"income"` // sum over paid orders
	Delivered  int                        `json:"delivered"`
	InProgress int                        `json:"in_progress"`
	Cancelled  int                        `json:"cancelled"`
	ByStatus   map[models.OrderStatus]int `json:"by_status"`
	Orders     []models.Order             `json:"orders"`
}

type ReportService struct {
	orders *OrderService
	loc    *time.Location
}

func newReportService(d Deps, orders *OrderService) *ReportService {
	return &ReportService{orders: orders, loc: d.Location}
}

// Report builds the summary for the period containing at, on the ordering
// calendar.
func (s *ReportService) Report(ctx context.Context, period ReportPeriod, at time.Time) (*Report, error) {
	if period == "" {
		period = PeriodAll
	}
	filter := OrderFilter{}
	if period != PeriodAll {
		from, to, err := periodBounds(period, at.In(s.loc))
		if err != nil {
			return nil, err
		}
		filter.From, filter.To = &from, &to
	}

	orders, err := s.orders.GetOrders(ctx, filter)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Period:   period,
		From:     filter.From,
		To:       filter.To,
		ByStatus: map[models.OrderStatus]int{},
		Orders:   orders,
	}
	for _, o := range orders {
		r.OrderCount++
		r.ByStatus[o.Status]++
		switch o.Status {
		case models.StatusDelivered:
			r.Delivered++
		case models.StatusCancelled:
			r.Cancelled++
		default:
			r.InProgress++
		}
		if o.IsPaid {
			r.Income += o.TotalAmount
		}
	}
	return r, nil
}

func periodBounds(period ReportPeriod, at time.Time) (time.Time, time.Time, error) {
	y, m, d := at.Date()
	loc := at.Location()
	switch period {
	case PeriodDaily:
		start := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 0, 1), nil
	case PeriodMonthly:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), nil
	case PeriodYearly:
		start := time.Date(y, 1, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0), nil
	}
	return time.Time{}, time.Time{}, invalid("unknown report period %q", period)
}
