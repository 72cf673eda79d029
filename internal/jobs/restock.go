package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const updateLowStockMutation = `
mutation {
	updateLowStockProducts {
		updatedProducts { id name stock }
		message
	}
}`

type RestockJob struct {
	client Querier
	sink   *LineSink
	log    *slog.Logger
	now    func() time.Time
}

func NewRestockJob(client Querier, sink *LineSink, log *slog.Logger) *RestockJob {
	return &RestockJob{client: client, sink: sink, log: log, now: time.Now}
}

func (j *RestockJob) Name() string { return "low-stock-update" }

func (j *RestockJob) Run(ctx context.Context) error {
	var out struct {
		UpdateLowStockProducts struct {
			UpdatedProducts []struct {
				ID    string `json:"id"`
				Name  string `json:"name"`
				Stock int    `json:"stock"`
			} `json:"updatedProducts"`
			Message string `json:"message"`
		} `json:"updateLowStockProducts"`
	}

	err := j.client.Do(ctx, updateLowStockMutation, nil, &out)
	ts := j.now().Format(reportLayout)
	if err != nil {
		writeLines(j.log, j.sink, fmt.Sprintf("%s - Error: %v", ts, err))
		return err
	}

	res := out.UpdateLowStockProducts
	lines := make([]string, 0, len(res.UpdatedProducts)+1)
	for _, p := range res.UpdatedProducts {
		lines = append(lines, fmt.Sprintf("%s - Restocked %s: stock %d", ts, p.Name, p.Stock))
	}
	lines = append(lines, fmt.Sprintf("%s - %s", ts, res.Message))
	writeLines(j.log, j.sink, lines...)
	return nil
}
