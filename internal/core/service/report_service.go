package service

import (
	"context"

	"github.com/rl1809/crm/internal/core/domain"
	"github.com/rl1809/crm/internal/port"
)

type ReportService struct {
	store port.Reader
}

func NewReportService(store port.Reader) *ReportService {
	return &ReportService{store: store}
}

func (s *ReportService) Generate(ctx context.Context) (domain.Report, error) {
	customers, err := s.store.CountCustomers(ctx)
	if err != nil {
		return domain.Report{}, storeError(err)
	}
	orders, err := s.store.ListOrders(ctx, domain.OrderFilter{})
	if err != nil {
		return domain.Report{}, storeError(err)
	}
	return domain.Summarize(orders, customers), nil
}
