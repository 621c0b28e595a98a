package cron

import (
	"context"
	"fmt"

	"github.com/juliaconfecciones/production-backend/internal/materials"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
)

type lowStockLister interface {
	ListBelowThreshold(ctx context.Context) ([]materials.LowStock, error)
}

type LowStockJobParams struct {
	Logger    *logger.Logger
	Materials lowStockLister
}

func NewLowStockJob(params LowStockJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Materials == nil {
		return nil, fmt.Errorf("materials lister required")
	}
	return &lowStockJob{logg: params.Logger, materials: params.Materials}, nil
}

// lowStockJob logs one warning per material at or under its reorder threshold.
type lowStockJob struct {
	logg      *logger.Logger
	materials lowStockLister
}

func (j *lowStockJob) Name() string { return "low-stock-digest" }

func (j *lowStockJob) Run(ctx context.Context) error {
	rows, err := j.materials.ListBelowThreshold(ctx)
	if err != nil {
		return fmt.Errorf("list below threshold: %w", err)
	}
	for _, row := range rows {
		j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
			"material_id": row.ID.String(),
			"material":    row.Name,
			"on_hand":     row.QuantityOnHand.String(),
			"threshold":   row.ReorderThreshold.String(),
			"deficit":     row.Deficit.String(),
		}), "cron.low_stock.material")
	}
	j.logg.Info(j.logg.WithField(ctx, "materials", len(rows)), "cron.low_stock.complete")
	return nil
}
