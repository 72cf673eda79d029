package jobs

import (
	"context"
	"log/slog"
	"time"
)

type HeartbeatJob struct {
	client Querier
	sink   *LineSink
	log    *slog.Logger
	now    func() time.Time
}

func NewHeartbeatJob(client Querier, sink *LineSink, log *slog.Logger) *HeartbeatJob {
	return &HeartbeatJob{client: client, sink: sink, log: log, now: time.Now}
}

func (j *HeartbeatJob) Name() string { return "heartbeat" }

func (j *HeartbeatJob) Run(ctx context.Context) error {
	ts := j.now().Format(heartbeatLayout)
	writeLines(j.log, j.sink, ts+" CRM is alive")

	var out struct {
		Hello string `json:"hello"`
	}
	if err := j.client.Do(ctx, `{ hello }`, nil, &out); err != nil {
		writeLines(j.log, j.sink, ts+" GraphQL hello check error: "+err.Error())
		return err
	}

	writeLines(j.log, j.sink, ts+" GraphQL hello response: "+out.Hello)
	return nil
}
