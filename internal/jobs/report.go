package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/crm/internal/core/domain"
)

const reportQuery = `
query {
	customers { id }
	orders { totalAmount }
}`

type ReportJob struct {
	client Querier
	sink   *LineSink
	log    *slog.Logger
	now    func() time.Time
}

func NewReportJob(client Querier, sink *LineSink, log *slog.Logger) *ReportJob {
	return &ReportJob{client: client, sink: sink, log: log, now: time.Now}
}

func (j *ReportJob) Name() string { return "crm-report" }

func (j *ReportJob) Run(ctx context.Context) error {
	report, err := j.fetch(ctx)
	ts := j.now().Format(reportLayout)
	if err != nil {
		writeLines(j.log, j.sink, fmt.Sprintf("%s - Error: %v", ts, err))
		return err
	}

	writeLines(j.log, j.sink, fmt.Sprintf("%s - Report: %d customers, %d orders, %s revenue",
		ts, report.TotalCustomers, report.TotalOrders, report.TotalRevenue.StringFixed(2)))
	return nil
}

func (j *ReportJob) fetch(ctx context.Context) (domain.Report, error) {
	var out struct {
		Customers []struct {
			ID string `json:"id"`
		} `json:"customers"`
		Orders []struct {
			TotalAmount string `json:"totalAmount"`
		} `json:"orders"`
	}
	if err := j.client.Do(ctx, reportQuery, nil, &out); err != nil {
		return domain.Report{}, err
	}

	orders := make([]domain.Order, len(out.Orders))
	for i, o := range out.Orders {
		total, err := decimal.NewFromString(o.TotalAmount)
		if err != nil {
			return domain.Report{}, fmt.Errorf("order total %q: %w", o.TotalAmount, err)
		}
		orders[i].TotalAmount = total
	}
	return domain.Summarize(orders, len(out.Customers)), nil
}
