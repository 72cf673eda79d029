package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const recentOrdersQuery = `
query RecentOrders($since: String!) {
	orders(orderDateGte: $since, orderBy: "orderDate") {
		id
		customer { email }
	}
}`

// ReminderJob logs every order placed within the window together with the customer email.
type ReminderJob struct {
	client Querier
	sink   *LineSink
	log    *slog.Logger
	window time.Duration
	now    func() time.Time
}

func NewReminderJob(client Querier, sink *LineSink, window time.Duration, log *slog.Logger) *ReminderJob {
	return &ReminderJob{client: client, sink: sink, log: log, window: window, now: time.Now}
}

func (j *ReminderJob) Name() string { return "order-reminders" }

func (j *ReminderJob) Run(ctx context.Context) error {
	now := j.now()
	since := now.Add(-j.window).UTC().Format(time.RFC3339)
	ts := now.Format(reportLayout)

	var out struct {
		Orders []struct {
			ID       string `json:"id"`
			Customer *struct {
				Email string `json:"email"`
			} `json:"customer"`
		} `json:"orders"`
	}
	if err := j.client.Do(ctx, recentOrdersQuery, map[string]any{"since": since}, &out); err != nil {
		writeLines(j.log, j.sink, fmt.Sprintf("[%s] Error: %v", ts, err))
		return err
	}

	lines := make([]string, 0, len(out.Orders))
	for _, o := range out.Orders {
		email := ""
		if o.Customer != nil {
			email = o.Customer.Email
		}
		lines = append(lines, fmt.Sprintf("[%s] Order ID: %s, Customer Email: %s", ts, o.ID, email))
	}
	writeLines(j.log, j.sink, lines...)

	j.log.Info("Order reminders processed!", "orders", len(out.Orders))
	return nil
}
