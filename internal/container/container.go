package container

import (
	"context"
	"fmt"

	"prabandam/scraper/internal/client"
	"prabandam/scraper/internal/config"
	"prabandam/scraper/internal/proxy"
	"prabandam/scraper/internal/repository"
	"prabandam/scraper/internal/service"

	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     client.UvedaClient
	Repository repository.RecordRepository

	Service *service.Service
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	proxySupplier, err := proxy.NewProxySupplier(context.Background(), cfg.Scraper.Proxies, cfg.Scraper.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize proxy supplier: %w", err)
	}

	uvedaClient := client.NewUvedaClient(cfg.Scraper, proxySupplier)
	csvRepo := repository.NewCSVRepository(cfg.Output.File)

	return &Container{
		Config:     cfg,
		Client:     uvedaClient,
		Repository: csvRepo,
		Service:    service.NewService(uvedaClient, csvRepo, cfg.Scraper.MaxWorkers),
	}, nil
}

// Run resolves the build ID and executes one full scrape
func (c *Container) Run(ctx context.Context) error {
	if err := c.Client.ResolveBuildID(ctx); err != nil {
		return fmt.Errorf("failed to resolve build ID: %w", err)
	}

	report, err := c.Service.Run(ctx)
	if err != nil {
		return err
	}

	log.Infof("⏱ Total execution time: %.2f seconds (%d prabandams, %d rows)",
		report.Elapsed.Seconds(), report.PrabandamCount, report.RowsWritten)
	return nil
}
