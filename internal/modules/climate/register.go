package climate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"climate-server/internal/config"
	"climate-server/internal/modules/climate/controller"
	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/service"
	"climate-server/internal/modules/climate/types"
	"climate-server/internal/observability"
)

// RegisterFeature wires the climate routes into mux. With cfg.Preload both
// tables are read into memory once; otherwise every request queries db.
func RegisterFeature(ctx context.Context, mux *http.ServeMux, db *sql.DB, cfg config.Config, metrics *observability.Metrics) error {
	var climateRepository repository.ClimateRepository = repository.NewRepository(db)
	if cfg.Preload {
		snapshot, err := repository.Load(ctx, climateRepository)
		if err != nil {
			return fmt.Errorf("%w: preload: %w", types.ErrStoreUnavailable, err)
		}
		observations, stations := snapshot.Counts()
		slog.Info("climate snapshot loaded", "observations", observations, "stations", stations)
		metrics.SetStoreRows(observations, stations)
		climateRepository = snapshot
	}
	if cfg.TOBSCutoff != "" {
		slog.Info("tobs cutoff pinned", "cutoff", cfg.TOBSCutoff)
	}

	climateService := service.NewService(climateRepository, cfg.TOBSCutoff)
	climateController := controller.NewClimateController(climateService)
	climateController.RegisterRoutes(mux)
	return nil
}
