package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/hindsight/internal/config"
	"github.com/aristath/hindsight/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens both databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{Config: cfg}

	// client_data.db - last good payload per live source, always refetchable
	clientDataDB, err := openDatabase(cfg.DataDir, "client_data", database.ProfileCache)
	if err != nil {
		return nil, err
	}
	container.ClientDataDB = clientDataDB

	// portfolio.db - saved holdings
	portfolioDB, err := openDatabase(cfg.DataDir, "portfolio", database.ProfileStandard)
	if err != nil {
		clientDataDB.Close()
		return nil, err
	}
	container.PortfolioDB = portfolioDB

	log.Info().Str("data_dir", cfg.DataDir).Msg("Databases initialized")
	return container, nil
}

func openDatabase(dataDir, name string, profile database.DatabaseProfile) (*database.DB, error) {
	db, err := database.New(database.Config{
		Path:    filepath.Join(dataDir, name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database: %w", name, err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate %s database: %w", name, err)
	}
	return db, nil
}
