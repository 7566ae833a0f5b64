package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/yanqian/outfit-calendar/pkg/errors"
	"github.com/yanqian/outfit-calendar/pkg/normalize"
	"github.com/yanqian/outfit-calendar/pkg/util"
)

// Service exposes the dashboard overview to the HTTP layer.
type Service interface {
	Overview(ctx context.Context, q Query) (OverviewUI, error)
}

// OverviewClient fetches the raw overview payload for a month.
type OverviewClient interface {
	DashboardOverview(ctx context.Context, year, month int, section string) (any, error)
}

type service struct {
	client OverviewClient
	logger *slog.Logger
}

// NewService wires the dashboard domain.
func NewService(client OverviewClient, logger *slog.Logger) Service {
	return &service{
		client: client,
		logger: logger.With("component", "dashboard.service"),
	}
}

func (s *service) Overview(ctx context.Context, q Query) (OverviewUI, error) {
	if err := validateQuery(q); err != nil {
		return OverviewUI{}, err
	}

	raw, err := s.client.DashboardOverview(ctx, q.Year, q.Month, string(q.Section))
	if err != nil {
		return OverviewUI{}, apperrors.Wrap("upstream_error", "fetch dashboard overview failed", err)
	}

	ui := ToOverviewUI(raw)
	if ui.Range.From == normalize.EpochDate && ui.Range.To == normalize.EpochDate {
		ui.Range.From, ui.Range.To = util.MonthBounds(q.Year, q.Month)
	}
	s.logger.Debug("dashboard overview built",
		"year", q.Year,
		"month", q.Month,
		"section", q.Section,
		"donutSlices", len(ui.Donut.Data),
		"topClicked", len(ui.TopClickedItems),
	)
	return ui, nil
}

func validateQuery(q Query) error {
	if q.Year < 2000 {
		return apperrors.Wrap("invalid_input", fmt.Sprintf("year must be 2000 or later, got %d", q.Year), nil)
	}
	if q.Month < 1 || q.Month > 12 {
		return apperrors.Wrap("invalid_input", fmt.Sprintf("month must be between 1 and 12, got %d", q.Month), nil)
	}
	switch q.Section {
	case SectionAll, SectionOverview, SectionSummary, SectionFunnel, SectionCategory, SectionTopItems:
		return nil
	default:
		return apperrors.Wrap("invalid_input", fmt.Sprintf("unknown section %q", q.Section), nil)
	}
}
