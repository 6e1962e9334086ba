package di

import (
	"context"
	"fmt"

	"github.com/aristath/hindsight/internal/clientdata"
	"github.com/aristath/hindsight/internal/clients/bigpara"
	"github.com/aristath/hindsight/internal/clients/coingecko"
	"github.com/aristath/hindsight/internal/clients/exchangerate"
	"github.com/aristath/hindsight/internal/clients/tcmb"
	"github.com/aristath/hindsight/internal/config"
	"github.com/aristath/hindsight/internal/connectivity"
	"github.com/aristath/hindsight/internal/domain"
	"github.com/aristath/hindsight/internal/fetcher"
	"github.com/aristath/hindsight/internal/modules/calculator"
	"github.com/aristath/hindsight/internal/modules/historical"
	"github.com/aristath/hindsight/internal/modules/portfolio"
	"github.com/aristath/hindsight/internal/modules/prices"
	"github.com/aristath/hindsight/internal/modules/rates"
	"github.com/aristath/hindsight/internal/modules/reference"
	"github.com/aristath/hindsight/internal/reliability"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the repositories over the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container.ClientDataDB == nil || container.PortfolioDB == nil {
		return fmt.Errorf("databases must be initialized before repositories")
	}

	container.ClientDataRepo = clientdata.NewRepository(container.ClientDataDB.Conn())
	container.PortfolioRepo = portfolio.NewRepository(container.PortfolioDB.Conn(), log)
	return nil
}

// InitializeServices builds the price plumbing and the services on top of it
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container.Probe == nil {
		container.Probe = connectivity.NewHTTPProbe(cfg.Sources.ConnectivityURL, cfg.Sources.ConnectivityWait, log)
	}

	dataset, err := historical.Load(cfg.HistoricalDataPath)
	if err != nil {
		return fmt.Errorf("failed to load historical dataset: %w", err)
	}
	container.Dataset = dataset
	log.Info().Int("series", len(dataset.Keys())).Msg("Historical dataset loaded")

	container.Fetcher = fetcher.New(container.ClientDataRepo, container.Probe, log, fetcher.WithMaxAge(cfg.CacheTTL))
	container.Resolver = newResolver(container.Fetcher, cfg, log)

	container.Engine = calculator.NewEngine(dataset, container.Resolver, reference.Tables{}, log)
	container.RatesService = rates.NewService(container.Resolver, dataset, log)
	container.PortfolioService = portfolio.NewService(container.PortfolioRepo, container.Engine, log)

	if cfg.Backup != nil && cfg.Backup.Enabled {
		store, err := reliability.NewS3Client(context.Background(), reliability.S3Options{
			Bucket:          cfg.Backup.Bucket,
			Endpoint:        cfg.Backup.Endpoint,
			Region:          cfg.Backup.Region,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create backup store: %w", err)
		}
		container.BackupService = reliability.NewBackupService(store, container.Databases(), cfg.DataDir, cfg.Backup.Prefix, log)
	}

	return nil
}

// newResolver registers one source chain per live asset class, in priority order
func newResolver(f *fetcher.Fetcher, cfg *config.Config, log zerolog.Logger) *prices.Resolver {
	src := cfg.Sources
	coins := coingecko.NewClient(src.CoinGeckoURL, cfg.HTTPTimeout, log)

	resolver := prices.NewResolver(reference.Estimates{}, log)
	resolver.Register(domain.ClassFiatCurrency,
		prices.NewTCMBSource(f, tcmb.NewClient(src.TCMBURL, cfg.HTTPTimeout, log)),
		prices.NewExchangeRateSource(f, exchangerate.NewClient(src.ExchangeRateURL, cfg.HTTPTimeout, log)),
	)
	resolver.Register(domain.ClassPreciousMetal, prices.NewGoldSource(f, coins, resolver))
	resolver.Register(domain.ClassCryptoAsset, prices.NewCryptoSource(f, coins))
	resolver.Register(domain.ClassListedEquity,
		prices.NewEquitySource(f, bigpara.NewClient(src.ProxyURL, src.BigParaURL, cfg.HTTPTimeout, log), cfg.EquityTimeout),
	)
	return resolver
}
