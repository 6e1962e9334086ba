// Package di provides dependency injection type definitions.
//
// The Container holds every long-lived collaborator of the application and is
// the single source of truth handed to the HTTP server and the entry point.
package di

import (
	"github.com/aristath/hindsight/internal/clientdata"
	"github.com/aristath/hindsight/internal/config"
	"github.com/aristath/hindsight/internal/connectivity"
	"github.com/aristath/hindsight/internal/database"
	"github.com/aristath/hindsight/internal/fetcher"
	"github.com/aristath/hindsight/internal/modules/calculator"
	"github.com/aristath/hindsight/internal/modules/historical"
	"github.com/aristath/hindsight/internal/modules/portfolio"
	"github.com/aristath/hindsight/internal/modules/prices"
	"github.com/aristath/hindsight/internal/modules/rates"
	"github.com/aristath/hindsight/internal/reliability"
	"github.com/aristath/hindsight/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	// Databases
	ClientDataDB *database.DB // Last good payload per live source
	PortfolioDB  *database.DB // Saved holdings

	// Repositories
	ClientDataRepo *clientdata.Repository
	PortfolioRepo  *portfolio.Repository

	// Price plumbing
	Probe    connectivity.Probe
	Fetcher  *fetcher.Fetcher
	Resolver *prices.Resolver
	Dataset  *historical.Dataset

	// Services
	Engine           *calculator.Engine
	RatesService     *rates.Service
	PortfolioService *portfolio.Service
	BackupService    *reliability.BackupService // nil when backups are disabled

	// Background jobs
	Scheduler *scheduler.Scheduler
	Jobs      []scheduler.Job
}

// Databases returns every open database
func (c *Container) Databases() []*database.DB {
	dbs := make([]*database.DB, 0, 2)
	for _, db := range []*database.DB{c.ClientDataDB, c.PortfolioDB} {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return dbs
}
