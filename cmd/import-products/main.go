// Command import-products loads a JSON product file into the store. Without
// -confirm it only prints the normalized preview.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"protonshop/internal/config"
	"protonshop/internal/logger"
	"protonshop/internal/model"
	"protonshop/internal/repository"
	"protonshop/internal/service"
	"protonshop/internal/ws"
	"protonshop/pkg/database"

	"github.com/pkg/errors"
)

// stdoutPublisher prints events instead of pushing them to websocket clients.
type stdoutPublisher struct{}

func (stdoutPublisher) Publish(eventType string, payload any) {
	fmt.Printf("event %s: %v\n", eventType, payload)
}

func (stdoutPublisher) PublishToUser(string, string, any) {}

var _ ws.Publisher = stdoutPublisher{}

func main() {
	file := flag.String("file", "", "JSON file with one product or an array of products")
	confirm := flag.Bool("confirm", false, "persist the previewed records")
	actor := flag.String("actor", "cli-import", "value recorded as created_by")
	flag.Parse()

	if err := run(*file, *confirm, *actor); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func run(path string, confirm bool, actor string) error {
	if path == "" {
		return errors.New("-file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read import file")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		return err
	}

	// Preview never touches the database.
	preview := service.NewImportService(nil, stdoutPublisher{}, log)
	payload, err := preview.Preview(data)
	if err != nil {
		return err
	}
	records := payload.Records
	if !payload.IsBatch() {
		records = []model.Product{*payload.Single}
	}
	if err := printJSON(records); err != nil {
		return err
	}
	if !confirm {
		fmt.Printf("%d record(s) previewed; re-run with -confirm to save them\n", len(records))
		return nil
	}

	db, err := database.ConnectDB(database.Options{
		DSN:      cfg.DatabaseURL,
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		Port:     cfg.DBPort,
	}, log)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(repository.Models()...); err != nil {
		return errors.Wrap(err, "migrate")
	}
	repos := repository.NewGormRepositories(db)

	inventory := service.NewInventoryService(repos.Products, repos.Categories, nil, stdoutPublisher{}, log)
	summary, err := service.NewImportService(inventory, stdoutPublisher{}, log).
		Commit(context.Background(), records, true, actor)
	if err != nil {
		return err
	}

	fmt.Printf("✅ created %d, skipped %d, failed %d\n", summary.Created, summary.Skipped, len(summary.Failed))
	for _, name := range summary.Failed {
		fmt.Println("   failed:", name)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
