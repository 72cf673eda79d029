package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/crm/internal/adapter/client"
	"github.com/rl1809/crm/internal/adapter/handler"
	"github.com/rl1809/crm/internal/adapter/storage"
	"github.com/rl1809/crm/internal/core/service"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type crmFixture struct {
	svc    *service.Services
	client *client.GraphQLClient
}

func newCRMFixture(t *testing.T) *crmFixture {
	t.Helper()
	store := storage.NewMemoryAdapter()
	svc, err := service.New(store, nil, service.Config{PhoneMinDigits: 7}, discardLogger())
	require.NoError(t, err)
	schema, err := handler.NewSchema(svc, discardLogger())
	require.NoError(t, err)

	srv := httptest.NewServer(handler.NewHTTPHandler(schema, store, discardLogger()).Routes())
	t.Cleanup(srv.Close)

	return &crmFixture{svc: svc, client: client.NewGraphQLClient(srv.URL+"/graphql", 5*time.Second)}
}

func newSink(t *testing.T, name string) (*LineSink, string) {
	path := filepath.Join(t.TempDir(), name)
	return NewLineSink(path), path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

type failingQuerier struct{ err error }

func (f failingQuerier) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	return f.err
}

func TestHeartbeatJob(t *testing.T) {
	fx := newCRMFixture(t)
	sink, path := newSink(t, "heartbeat.txt")

	job := NewHeartbeatJob(fx.client, sink, discardLogger())
	job.now = func() time.Time { return fixedNow }
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, []string{
		"14/03/2025-09:26:53 CRM is alive",
		"14/03/2025-09:26:53 GraphQL hello response: Hello, GraphQL!",
	}, readLines(t, path))
}

func TestHeartbeatJob_EndpointDown(t *testing.T) {
	sink, path := newSink(t, "heartbeat.txt")

	job := NewHeartbeatJob(failingQuerier{err: errors.New("connection refused")}, sink, discardLogger())
	job.now = func() time.Time { return fixedNow }
	assert.Error(t, job.Run(context.Background()))

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "14/03/2025-09:26:53 CRM is alive", lines[0])
	assert.Equal(t, "14/03/2025-09:26:53 GraphQL hello check error: connection refused", lines[1])
}

func TestRestockJob(t *testing.T) {
	fx := newCRMFixture(t)
	ctx := context.Background()
	_, err := fx.svc.Products.CreateProduct(ctx, service.CreateProductInput{Name: "Widget", Price: decimal.NewFromInt(5), Stock: 2})
	require.NoError(t, err)

	sink, path := newSink(t, "restock.txt")
	job := NewRestockJob(fx.client, sink, discardLogger())
	job.now = func() time.Time { return fixedNow }
	require.NoError(t, job.Run(ctx))
	require.NoError(t, job.Run(ctx))

	assert.Equal(t, []string{
		"2025-03-14 09:26:53 - Restocked Widget: stock 12",
		"2025-03-14 09:26:53 - 1 product(s) restocked successfully.",
		"2025-03-14 09:26:53 - No low-stock products found.",
	}, readLines(t, path))
}

func TestReminderJob(t *testing.T) {
	fx := newCRMFixture(t)
	ctx := context.Background()

	cust, err := fx.svc.Customers.CreateCustomer(ctx, service.CustomerInput{Name: "Alice", Email: "alice@example.com"}, "")
	require.NoError(t, err)
	product, err := fx.svc.Products.CreateProduct(ctx, service.CreateProductInput{Name: "Widget", Price: decimal.NewFromInt(5), Stock: 20})
	require.NoError(t, err)

	old := fixedNow.Add(-30 * 24 * time.Hour)
	recent := fixedNow.Add(-24 * time.Hour)
	_, err = fx.svc.Orders.CreateOrder(ctx, service.CreateOrderInput{CustomerID: cust.Customer.ID, ProductIDs: []string{product.ID}, OrderDate: &old})
	require.NoError(t, err)
	order, err := fx.svc.Orders.CreateOrder(ctx, service.CreateOrderInput{CustomerID: cust.Customer.ID, ProductIDs: []string{product.ID}, OrderDate: &recent})
	require.NoError(t, err)

	sink, path := newSink(t, "reminders.txt")
	job := NewReminderJob(fx.client, sink, 7*24*time.Hour, discardLogger())
	job.now = func() time.Time { return fixedNow }
	require.NoError(t, job.Run(ctx))

	assert.Equal(t, []string{
		"[2025-03-14 09:26:53] Order ID: " + order.ID + ", Customer Email: alice@example.com",
	}, readLines(t, path))
}

func TestReportJob(t *testing.T) {
	fx := newCRMFixture(t)
	ctx := context.Background()

	cust, err := fx.svc.Customers.CreateCustomer(ctx, service.CustomerInput{Name: "Alice", Email: "alice@example.com"}, "")
	require.NoError(t, err)
	_, err = fx.svc.Customers.CreateCustomer(ctx, service.CustomerInput{Name: "Bob", Email: "bob@example.com"}, "")
	require.NoError(t, err)
	a, err := fx.svc.Products.CreateProduct(ctx, service.CreateProductInput{Name: "A", Price: decimal.RequireFromString("10.25"), Stock: 20})
	require.NoError(t, err)
	b, err := fx.svc.Products.CreateProduct(ctx, service.CreateProductInput{Name: "B", Price: decimal.RequireFromString("0.50"), Stock: 20})
	require.NoError(t, err)

	_, err = fx.svc.Orders.CreateOrder(ctx, service.CreateOrderInput{CustomerID: cust.Customer.ID, ProductIDs: []string{a.ID, b.ID}})
	require.NoError(t, err)
	_, err = fx.svc.Orders.CreateOrder(ctx, service.CreateOrderInput{CustomerID: cust.Customer.ID, ProductIDs: []string{b.ID}})
	require.NoError(t, err)

	sink, path := newSink(t, "report.txt")
	job := NewReportJob(fx.client, sink, discardLogger())
	job.now = func() time.Time { return fixedNow }
	require.NoError(t, job.Run(ctx))

	assert.Equal(t, []string{
		"2025-03-14 09:26:53 - Report: 2 customers, 2 orders, 11.25 revenue",
	}, readLines(t, path))
}

func TestReportJob_Error(t *testing.T) {
	sink, path := newSink(t, "report.txt")
	job := NewReportJob(failingQuerier{err: errors.New("boom")}, sink, discardLogger())
	job.now = func() time.Time { return fixedNow }
	assert.Error(t, job.Run(context.Background()))

	assert.Equal(t, []string{"2025-03-14 09:26:53 - Error: boom"}, readLines(t, path))
}

type panicJob struct{}

func (panicJob) Name() string                  { return "panic" }
func (panicJob) Run(ctx context.Context) error { panic("kaboom") }

type slowJob struct{ sawDeadline bool }

func (j *slowJob) Name() string { return "slow" }
func (j *slowJob) Run(ctx context.Context) error {
	<-ctx.Done()
	j.sawDeadline = errors.Is(ctx.Err(), context.DeadlineExceeded)
	return ctx.Err()
}

func TestRunSafely(t *testing.T) {
	assert.NotPanics(t, func() { RunSafely(discardLogger(), panicJob{}, time.Second) })

	job := &slowJob{}
	RunSafely(discardLogger(), job, 10*time.Millisecond)
	assert.True(t, job.sawDeadline)
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(discardLogger(), time.Second)
	assert.Error(t, s.Add("not a cron spec", panicJob{}))
	assert.NoError(t, s.Add("*/5 * * * *", panicJob{}))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestLineSink_Appends(t *testing.T) {
	sink, path := newSink(t, "sink.txt")
	require.NoError(t, sink.WriteLine("one"))
	require.NoError(t, sink.WriteLine("two"))
	assert.Equal(t, []string{"one", "two"}, readLines(t, path))

	bad := NewLineSink(filepath.Join(t.TempDir(), "missing-dir", "x.txt"))
	assert.Error(t, bad.WriteLine("x"))
}
