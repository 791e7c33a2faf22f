package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/commission"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/config"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/crm"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
	httpapi "github.com/denisok6893-rgb/agent-commission-reports/internal/http"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/referral"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/report"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	store, err := storage.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()
	if err := store.EnsureSchema(); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	crmDB, err := crm.Open(cfg.CRMPath)
	if err != nil {
		log.Fatalf("open crm: %v", err)
	}
	if cfg.CRMAutoMigrate {
		if err := crm.Migrate(crmDB); err != nil {
			log.Fatalf("migrate crm: %v", err)
		}
	}
	activity := crm.NewRepository(crmDB)

	if cfg.RatesPath != "" {
		r, err := commission.LoadRatesFromFile(cfg.RatesPath)
		if err != nil {
			log.Printf("keep stored commission rates (reason: %v)", err)
		} else if err := store.SetRates(context.Background(), r); err != nil {
			log.Fatalf("apply commission rates: %v", err)
		}
	}
	rates := commission.NewCachedRates(store, cfg.RatesCacheTTL)
	classifier := referral.NewClassifier(store, logger)
	agg := report.NewAggregator(store, classifier, activity, rates, logger)
	reports := report.NewService(store, activity, agg, logger)

	if cfg.SeedReferralsPath != "" {
		seedReferrals(context.Background(), logger, store, classifier, cfg.SeedReferralsPath)
	}

	srv := httpapi.NewServer(reports, classifier, store, store, logger)
	srv.RatesCache = rates

	logger.Info("API listening", "address", cfg.Address, "database", cfg.DatabasePath, "crm", cfg.CRMPath)
	if err := http.ListenAndServe(cfg.Address, srv.Routes()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// seedReferrals imports a JSON referral file and classifies the touched subjects.
// Failures are logged; the service still starts.
func seedReferrals(ctx context.Context, logger *slog.Logger, store *storage.SQLiteStore, classifier *referral.Classifier, path string) {
	items, err := storage.LoadReferralsFromFile(path)
	if err != nil {
		logger.Warn("skip referral seed", "path", path, "error", err)
		return
	}
	n, err := store.ImportReferrals(ctx, items)
	if err != nil {
		logger.Warn("referral seed failed", "path", path, "error", err)
		return
	}

	seen := make(map[domain.Subject]struct{}, len(items))
	subjects := make([]domain.Subject, 0, len(items))
	for _, r := range items {
		if _, ok := seen[r.Subject]; !ok {
			seen[r.Subject] = struct{}{}
			subjects = append(subjects, r.Subject)
		}
	}
	_, errs := classifier.ClassifyAll(ctx, subjects)
	logger.Info("referrals seeded", "path", path, "imported", n, "subjects", len(subjects), "classification_failures", len(errs))
}
