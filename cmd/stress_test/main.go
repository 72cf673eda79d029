package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/rl1809/crm/internal/adapter/storage"
	"github.com/rl1809/crm/internal/core/domain"
	"github.com/rl1809/crm/internal/core/service"
	"github.com/rl1809/crm/internal/logging"
)

const (
	defaultDSN    = "root:root@tcp(localhost:3306)/crm?parseTime=true&loc=UTC"
	productCount  = 20
	totalRequests = 50
	threshold     = 10
	increment     = 10
	namePrefix    = "stress-product-"
)

// Fires concurrent restock runs without the Redis lock so that only the row locks
// and the conditional UPDATE guard the stock. Every low-stock product must end up
// incremented exactly once.
func main() {
	ctx := context.Background()

	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = defaultDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}

	store := storage.NewMySQLAdapter(db)
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// Clear previous test data
	if _, err := db.ExecContext(ctx, `DELETE FROM products WHERE name LIKE ?`, namePrefix+"%"); err != nil {
		log.Fatalf("failed to clean products: %v", err)
	}

	logger := logging.New("warn")
	products, err := service.NewProductService(store, nil, service.RestockPolicy{Threshold: threshold, Increment: increment}, logger)
	if err != nil {
		log.Fatalf("failed to build service: %v", err)
	}

	initial := map[string]int{}
	for i := 0; i < productCount; i++ {
		p, err := products.CreateProduct(ctx, service.CreateProductInput{
			Name:  fmt.Sprintf("%s%02d", namePrefix, i),
			Price: decimal.NewFromInt(int64(i + 1)),
			Stock: i,
		})
		if err != nil {
			log.Fatalf("failed to create product: %v", err)
		}
		initial[p.ID] = p.Stock
	}

	// Counters
	var restocked atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent restock runs
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := products.UpdateLowStockProducts(ctx)
			if err != nil {
				failCount.Add(1)
				return
			}
			for _, p := range res.Products {
				if _, ok := initial[p.ID]; ok {
					restocked.Add(1)
				}
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	expected := 0
	for _, stock := range initial {
		if stock < threshold {
			expected++
		}
	}

	fmt.Println("========== RESTOCK STRESS RESULTS ==========")
	fmt.Printf("Products:            %d\n", productCount)
	fmt.Printf("Concurrent runs:     %d\n", totalRequests)
	fmt.Printf("Restocks reported:   %d\n", restocked.Load())
	fmt.Printf("Failed runs:         %d\n", failCount.Load())
	fmt.Printf("Duration:            %v\n", elapsed)
	fmt.Println("=============================================")

	if int(restocked.Load()) == expected {
		fmt.Printf("PASS: exactly %d restocks reported\n", expected)
	} else {
		fmt.Printf("FAIL: expected %d restocks, got %d\n", expected, restocked.Load())
	}

	// Verify final stock in MySQL
	final, err := store.ListProducts(ctx, domain.ProductFilter{NameContains: namePrefix})
	if err != nil {
		log.Fatalf("failed to list products: %v", err)
	}
	bad := 0
	for _, p := range final {
		want := initial[p.ID]
		if want < threshold {
			want += increment
		}
		if p.Stock != want {
			bad++
			fmt.Printf("FAIL: %s expected stock %d, got %d\n", p.Name, want, p.Stock)
		}
	}
	if bad == 0 {
		fmt.Println("PASS: every low-stock product incremented exactly once")
	}
}
