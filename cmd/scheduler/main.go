package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rl1809/crm/internal/adapter/client"
	"github.com/rl1809/crm/internal/config"
	"github.com/rl1809/crm/internal/jobs"
	"github.com/rl1809/crm/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	runOnce := flag.String("run", "", "run a single job by name and exit (heartbeat, low-stock-update, order-reminders, crm-report)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New("info").Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	gql := client.NewGraphQLClient(cfg.Jobs.GraphQLURL, cfg.Jobs.Timeout)

	entries := []struct {
		spec string
		job  jobs.Job
	}{
		{cfg.Jobs.HeartbeatSchedule, jobs.NewHeartbeatJob(gql, jobs.NewLineSink(cfg.Jobs.HeartbeatLog), log)},
		{cfg.Jobs.RestockSchedule, jobs.NewRestockJob(gql, jobs.NewLineSink(cfg.Jobs.RestockLog), log)},
		{cfg.Jobs.ReminderSchedule, jobs.NewReminderJob(gql, jobs.NewLineSink(cfg.Jobs.ReminderLog), cfg.Jobs.ReminderWindow, log)},
		{cfg.Jobs.ReportSchedule, jobs.NewReportJob(gql, jobs.NewLineSink(cfg.Jobs.ReportLog), log)},
	}

	if *runOnce != "" {
		for _, e := range entries {
			if e.job.Name() == *runOnce {
				jobs.RunSafely(log, e.job, cfg.Jobs.Timeout)
				return
			}
		}
		log.Error("unknown job", "name", *runOnce)
		os.Exit(2)
	}

	scheduler := jobs.NewScheduler(log, cfg.Jobs.Timeout)
	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		if err := scheduler.Add(e.spec, e.job); err != nil {
			log.Error("failed to schedule job", "err", err)
			os.Exit(1)
		}
	}
	scheduler.Start()
	log.Info("scheduler started", "endpoint", cfg.Jobs.GraphQLURL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*cfg.Jobs.Timeout+time.Second)
	defer cancel()
	scheduler.Stop(stopCtx)
	log.Info("scheduler stopped")
}
