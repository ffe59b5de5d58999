package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rl1809/parts-inventory/internal/adapter/storage"
	"github.com/rl1809/parts-inventory/internal/config"
	"github.com/rl1809/parts-inventory/internal/core/domain"
	"github.com/rl1809/parts-inventory/internal/core/service"
	"github.com/rl1809/parts-inventory/internal/port"
)

const (
	totalAdds    = 50
	totalRemoves = 80
)

var stressKey = domain.PartKey{Manufacturer: "StressTest", Part: "bremžu disks", Model: "Corolla"}

func main() {
	configFile := flag.String("config", "", "path to config file")
	driver := flag.String("driver", "memory", "storage driver: memory or mysql")
	flag.Parse()

	ctx := context.Background()

	var repo port.PartsRepository
	switch *driver {
	case "memory":
		repo = storage.NewMemoryAdapter()
	case "mysql":
		cfg, err := config.Load(*configFile)
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.OpenMySQL(ctx, storage.MySQLOptions{
			Host:            cfg.MySQL.Host,
			Port:            cfg.MySQL.Port,
			User:            cfg.MySQL.User,
			Password:        cfg.MySQL.Password,
			Database:        cfg.MySQL.Database,
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
		})
		if err != nil {
			slog.Error("failed to connect mysql", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		adapter := storage.NewMySQLAdapter(db)
		if err := adapter.EnsureSchema(ctx); err != nil {
			slog.Error("failed to create schema", "error", err)
			os.Exit(1)
		}
		if err := clearStressRows(ctx, db); err != nil {
			slog.Error("failed to clear previous stress rows", "error", err)
			os.Exit(1)
		}
		repo = adapter
	default:
		slog.Error("unknown driver", "driver", *driver)
		os.Exit(1)
	}

	inventory := service.NewInventoryService(repo, storage.NopCache{})

	add := domain.ChangeBatch{{
		Manufacturer: stressKey.Manufacturer,
		Part:         stressKey.Part,
		Model:        stressKey.Model,
		Quantity:     1,
		Action:       domain.ActionAdd,
	}}
	remove := domain.ChangeBatch{{
		Manufacturer: stressKey.Manufacturer,
		Part:         stressKey.Part,
		Model:        stressKey.Model,
		Quantity:     1,
		Action:       domain.ActionRemove,
	}}

	start := time.Now()
	added, _, addErrors := fire(ctx, inventory, add, totalAdds)
	afterAdds := quantityOf(ctx, repo)
	removed, refused, removeErrors := fire(ctx, inventory, remove, totalRemoves)
	elapsed := time.Since(start)
	final := quantityOf(ctx, repo)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Driver:            %s\n", *driver)
	fmt.Printf("Concurrent Adds:   %d (applied %d, errors %d)\n", totalAdds, added, addErrors)
	fmt.Printf("Quantity After:    %d\n", afterAdds)
	fmt.Printf("Concurrent Removes:%d (applied %d, refused %d, errors %d)\n", totalRemoves, removed, refused, removeErrors)
	fmt.Printf("Final Quantity:    %d\n", final)
	fmt.Printf("Duration:          %v\n", elapsed)
	fmt.Println("==========================================")

	ok := true
	if afterAdds != totalAdds {
		fmt.Printf("FAIL: expected %d after adds, got %d\n", totalAdds, afterAdds)
		ok = false
	}
	if removed != totalAdds || refused != totalRemoves-totalAdds {
		fmt.Printf("FAIL: expected %d removed/%d refused, got %d/%d\n", totalAdds, totalRemoves-totalAdds, removed, refused)
		ok = false
	}
	if final != 0 {
		fmt.Printf("FAIL: expected final quantity 0, got %d\n", final)
		ok = false
	}
	if !ok {
		os.Exit(1)
	}
	fmt.Println("PASS: no lost updates, stock never went negative")
}

// clearStressRows removes rows left by an earlier run.
func clearStressRows(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM parts WHERE manufacturer = ?", stressKey.Manufacturer); err != nil {
		return fmt.Errorf("clear stress rows: %w", err)
	}
	return nil
}

func fire(ctx context.Context, inventory *service.InventoryService, batch domain.ChangeBatch, n int) (applied, refused, failed int32) {
	var appliedCount, refusedCount, failedCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			result, err := inventory.ExecuteChanges(ctx, "", batch)
			if err != nil {
				slog.Error("execute failed", "error", err)
				failedCount.Add(1)
				return
			}
			appliedCount.Add(int32(result.Count(domain.OutcomeApplied)))
			refusedCount.Add(int32(result.Count(domain.OutcomeInsufficientStock)))
		}()
	}

	wg.Wait()
	return appliedCount.Load(), refusedCount.Load(), failedCount.Load()
}

func quantityOf(ctx context.Context, repo port.PartsRepository) int {
	p, err := repo.FindByKey(ctx, stressKey)
	if err != nil || p == nil {
		return -1
	}
	return p.Quantity
}
