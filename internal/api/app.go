package api

import (
	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/auth"
	"github.com/yourname/fitcoach/internal/calendar"
	"github.com/yourname/fitcoach/internal/config"
	"github.com/yourname/fitcoach/internal/service"
	"github.com/yourname/fitcoach/internal/storage"
)

// App is the dependency surface handlers draw from.
type App interface {
	Logger() internal.Logger
	Config() *config.Config
	Store() storage.Store
	Auth() auth.Provider
	Ledger() *service.Ledger
	Plans() *service.Plans
	Coach() *service.Coach
	Calendar() *calendar.Service
}
