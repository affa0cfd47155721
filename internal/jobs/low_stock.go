package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"fridgepos/internal/models"
	"fridgepos/internal/services"
	"fridgepos/internal/store"
)

// LowStockAlert describes one item at or below its minimum stock level.
type LowStockAlert struct {
	ItemID       string
	ItemName     string
	CurrentStock int
	MinStock     int
	Status       models.StockStatus
}

// LowStockService scans inventory for items running low and raises a
// broadcast notification so the admin restocks before the shelf empties.
type LowStockService struct {
	store    *store.Store
	notifier services.NotificationService
	log      zerolog.Logger
}

func NewLowStockService(st *store.Store, notifier services.NotificationService, log zerolog.Logger) *LowStockService {
	return &LowStockService{store: st, notifier: notifier, log: log}
}

// CheckLowStock returns every item whose derived status is LOW_STOCK or
// OUT_OF_STOCK. Items without a minStock threshold only alert once empty.
func (s *LowStockService) CheckLowStock(ctx context.Context) []LowStockAlert {
	var alerts []LowStockAlert
	for _, item := range s.store.ListInventory() {
		status := item.StockStatus()
		if status == models.StockIn {
			continue
		}
		alerts = append(alerts, LowStockAlert{
			ItemID:       item.ID,
			ItemName:     item.Name,
			CurrentStock: item.Qty,
			MinStock:     item.MinStock,
			Status:       status,
		})
	}
	return alerts
}

// ScheduledLowStockCheck is the job body: scan, log, and send one summary
// notification when anything is low.
func (s *LowStockService) ScheduledLowStockCheck(ctx context.Context) error {
	alerts := s.CheckLowStock(ctx)
	if len(alerts) == 0 {
		s.log.Debug().Msg("low stock check: nothing below threshold")
		return nil
	}

	names := make([]string, 0, len(alerts))
	for _, alert := range alerts {
		s.log.Info().
			Str("item", alert.ItemName).
			Int("qty", alert.CurrentStock).
			Int("min_stock", alert.MinStock).
			Str("status", string(alert.Status)).
			Msg("low stock alert")
		names = append(names, fmt.Sprintf("%s (%d left)", alert.ItemName, alert.CurrentStock))
	}

	message := fmt.Sprintf("Low stock: %s", strings.Join(names, ", "))
	if _, err := s.notifier.Send(ctx, models.NotificationTargetAll, message); err != nil {
		return fmt.Errorf("send low stock notification: %w", err)
	}
	return nil
}
