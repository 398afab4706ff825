package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/aguavida/kpi-backend/internal/config"
	"github.com/aguavida/kpi-backend/internal/domain"
	"github.com/aguavida/kpi-backend/internal/kpi"
	"github.com/aguavida/kpi-backend/internal/repository/postgres"
	"github.com/aguavida/kpi-backend/internal/storage"
	"github.com/aguavida/kpi-backend/pkg/logger"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDateFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "date",
		Usage: "Reference date in YYYY-MM-DD format (default: today)",
	}
}

func referenceDate(c *cli.Context) (time.Time, error) {
	raw := c.String("date")
	if raw == "" {
		return time.Now(), nil
	}
	ref, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: %w", raw, err)
	}
	return ref, nil
}

func loadRawOrders(path string) ([]domain.RawOrder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read orders file: %w", err)
	}

	var raws []domain.RawOrder
	if err := json.Unmarshal(data, &raws); err != nil {
		// Some exports wrap the list in a "pedidos" object.
		var wrapped struct {
			Pedidos []domain.RawOrder `json:"pedidos"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("could not parse orders file: %w", err)
		}
		raws = wrapped.Pedidos
	}
	return raws, nil
}

// priceSum totals the explicit price fields of a raw export, giving the
// offline compute command the same revenue ground truth a database pass has.
func priceSum(raws []domain.RawOrder) float64 {
	var sum float64
	for _, raw := range raws {
		for _, key := range []string{"precio", "price"} {
			if v, ok := raw[key]; ok {
				switch n := v.(type) {
				case float64:
					sum += n
				case int:
					sum += float64(n)
				case json.Number:
					f, _ := n.Float64()
					sum += f
				}
				break
			}
		}
	}
	return sum
}

type computeOutput struct {
	Metrics     domain.Metrics     `json:"metrics"`
	Diagnostics domain.Diagnostics `json:"diagnostics"`
}

func runCompute(c *cli.Context) error {
	ref, err := referenceDate(c)
	if err != nil {
		return err
	}

	raws, err := loadRawOrders(c.String("orders"))
	if err != nil {
		return err
	}

	cfg := config.Load()
	engine := kpi.NewEngine(kpi.FromBusiness(cfg.Business))
	metrics, diag := engine.ComputeMetrics(raws, domain.BaselineKPIs{}, priceSum(raws), ref)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(computeOutput{Metrics: metrics, Diagnostics: diag})
}

func runSeed(c *cli.Context) error {
	raws, err := loadRawOrders(c.String("orders"))
	if err != nil {
		return err
	}

	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return err
	}
	defer db.Close()

	repo := postgres.NewIngestRepository(db)
	inserted, err := repo.InsertRawOrders(c.Context, c.String("orders"), raws)
	if err != nil {
		return fmt.Errorf("could not seed orders: %w", err)
	}

	logger.Log.Info().Int("records", inserted).Msg("seeded raw orders")
	return nil
}

func runExport(c *cli.Context) error {
	ref, err := referenceDate(c)
	if err != nil {
		return err
	}

	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return err
	}
	defer db.Close()

	repo := postgres.NewOrderRepository(db)
	raws, err := repo.FetchOrders(c.Context)
	if err != nil {
		return err
	}
	sum, err := repo.FetchPriceSumAllTime(c.Context)
	if err != nil {
		return err
	}
	baseline, err := repo.FetchBaselineKPIs(c.Context)
	if err != nil {
		return err
	}

	cfg := config.Load()
	engine := kpi.NewEngine(kpi.FromBusiness(cfg.Business))
	metrics, diag := engine.ComputeMetrics(raws, baseline, sum, ref)

	payload, err := json.MarshalIndent(computeOutput{Metrics: metrics, Diagnostics: diag}, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode snapshot: %w", err)
	}

	client, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("could not initialize object storage: %w", err)
	}

	key := fmt.Sprintf("snapshots/%s.json", ref.Format("2006-01-02"))
	if err := client.UploadObject(c.Context, key, payload); err != nil {
		return fmt.Errorf("could not upload snapshot: %w", err)
	}

	logger.Log.Info().Str("key", key).Msg("uploaded metrics snapshot")
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "kpi",
		Usage: "Compute, seed and export dashboard metrics",
		Commands: []*cli.Command{
			{
				Name:  "compute",
				Usage: "Compute metrics from a local order export and print them as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "orders",
						Usage:    "Path to a JSON order export",
						Required: true,
					},
					newDateFlag(),
				},
				Action: runCompute,
			},
			{
				Name:  "seed",
				Usage: "Load a JSON order export into the raw orders table",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:     "orders",
						Usage:    "Path to a JSON order export",
						Required: true,
					},
				},
				Action: runSeed,
			},
			{
				Name:  "export",
				Usage: "Compute metrics from the database and upload a snapshot to object storage",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newDateFlag(),
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}
