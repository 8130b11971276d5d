package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"clickservice/internal/config"
	"clickservice/internal/database"
	"clickservice/internal/domain"
	"clickservice/internal/modules/availability"
	"clickservice/internal/modules/catalog"
	"clickservice/internal/modules/professional"
	"clickservice/internal/pkg/logger"
	"clickservice/internal/repository"

	"github.com/joho/godotenv"
)

var operator = domain.Identity{UserID: 1, Role: domain.RoleOperator}

func main() {
	configFile := flag.String("config", "", "config file path")
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	log := logger.New(cfg)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("seed failed", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("seed complete")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	db, err := database.Connect(cfg.Database.DSN, log)
	if err != nil {
		return err
	}
	if err := repository.AutoMigrate(db); err != nil {
		return err
	}
	store := repository.NewStore(db)

	catalogService := catalog.NewService(store.Services, store.Requests, nil, log)
	directory := professional.NewService(store.Professionals, store.Services, professional.StoreTransactor(store), cfg.Directory.PhoneRegion, log)
	ledger := availability.NewService(store, nil, log)

	services := map[string]float64{
		"Plumbing":   25,
		"Electrical": 30,
		"Carpentry":  28,
		"Painting":   22,
	}
	ids := make(map[string]int64, len(services))
	existing, err := catalogService.List(ctx)
	if err != nil {
		return err
	}
	for _, s := range existing {
		ids[s.Name] = s.ID
	}
	for name, rate := range services {
		if _, ok := ids[name]; ok {
			continue
		}
		s, err := catalogService.Create(ctx, operator, catalog.CreateServiceRequest{Name: name, HourlyRate: rate})
		if err != nil {
			return err
		}
		ids[name] = s.ID
	}

	pros := []professional.RegisterRequest{
		{OwnerIdentity: 100, FullName: "Juan Perez", Phone: "11 2345-6789", WorkZone: "Palermo",
			ServiceIDs: []int64{ids["Plumbing"], ids["Carpentry"]}},
		{OwnerIdentity: 101, FullName: "Maria Gomez", Phone: "11 3456-7890", WorkZone: "Belgrano",
			ServiceIDs: []int64{ids["Electrical"]}},
		{OwnerIdentity: 102, FullName: "Carlos Diaz", Phone: "11 4567-8901", WorkZone: "Caballito",
			ServiceIDs: []int64{ids["Plumbing"], ids["Painting"]}},
	}

	day := domain.DateOf(time.Now()).AddDate(0, 0, 1)
	for _, req := range pros {
		p, err := directory.Register(ctx, operator, req)
		if errors.Is(err, domain.ErrConflict) {
			log.Info("professional already seeded", slog.Int64("owner_identity", req.OwnerIdentity))
			continue
		}
		if err != nil {
			return err
		}
		for _, hour := range []int{9, 13, 16} {
			start := day.Add(time.Duration(hour) * time.Hour)
			if _, err := ledger.PublishSlot(ctx, operator, p.ID, start, start.Add(2*time.Hour)); err != nil {
				return err
			}
		}
	}
	return nil
}
