package service

import (
	"context"
	"log/slog"
	"strings"

	"protonshop/internal/model"
	"protonshop/internal/shop"
	"protonshop/internal/ws"
)

// ImportSummary reports a committed batch.
type ImportSummary struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  []string `json:"failed"`
}

type ImportService interface {
	Preview(data []byte) (shop.ImportPayload, error)
	Commit(ctx context.Context, records []model.Product, confirmed bool, actorID string) (*ImportSummary, error)
}

type importService struct {
	inventory InventoryService
	publisher ws.Publisher
	log       *slog.Logger
}

func NewImportService(inventory InventoryService, publisher ws.Publisher, log *slog.Logger) ImportService {
	return &importService{
		inventory: inventory,
		publisher: publisher,
		log:       log,
	}
}

// Preview normalizes a pasted payload. Nothing is written.
func (s *importService) Preview(data []byte) (shop.ImportPayload, error) {
	return shop.ParseImportPayload(data)
}

// Commit persists the previewed records one at a time. A failing record is
// reported by name and never stops the rest.
func (s *importService) Commit(ctx context.Context, records []model.Product, confirmed bool, actorID string) (*ImportSummary, error) {
	if !confirmed {
		return nil, ErrImportNotConfirmed
	}

	summary := &ImportSummary{Failed: []string{}}
	for i := range records {
		record := records[i]
		if record.Name == "" {
			summary.Skipped++
			continue
		}
		name := strings.TrimSpace(record.Name)
		if name == "" {
			name = shop.UnknownImportName
		}

		if err := s.inventory.CreateProduct(ctx, &record, actorID); err != nil {
			s.log.WarnContext(ctx, "import record failed",
				slog.String("name", name), slog.String("error", err.Error()))
			summary.Failed = append(summary.Failed, name)
			continue
		}
		summary.Created++
	}

	s.log.InfoContext(ctx, "import.commit",
		slog.Int("records", len(records)),
		slog.Int("created", summary.Created),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", len(summary.Failed)),
		slog.String("actor", actorID),
	)
	s.publisher.Publish(ws.EventImportCompleted, summary)
	return summary, nil
}
