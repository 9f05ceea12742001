package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/gardenbook/internal/auth"
	"github.com/vbonduro/gardenbook/internal/domain"
	"github.com/vbonduro/gardenbook/internal/pocketbase"
)

const (
	reportsPerPage = 50
	reportsSort    = "-created"
)

type ReportService struct {
	client recordClient
	tokens auth.TokenProvider
	logger *slog.Logger
}

func NewReportService(client recordClient, tokens auth.TokenProvider, logger *slog.Logger) *ReportService {
	return &ReportService{client: client, tokens: tokens, logger: logger}
}

// List returns the newest reports first.
func (s *ReportService) List(ctx context.Context) ([]domain.Report, error) {
	if err := authorize(ctx, s.client, s.tokens); err != nil {
		return nil, err
	}
	res, err := s.client.List(ctx, domain.ReportsCollection, 1, reportsPerPage, pocketbase.ListOptions{Sort: reportsSort})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]domain.Report, 0, len(res.Items))
	for _, rec := range res.Items {
		r, err := decodeReport(rec)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, nil
}

func (s *ReportService) Get(ctx context.Context, id string) (*domain.Report, error) {
	if err := authorize(ctx, s.client, s.tokens); err != nil {
		return nil, err
	}
	rec, err := s.client.GetOne(ctx, domain.ReportsCollection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}
	return decodeReport(rec)
}

func (s *ReportService) Create(ctx context.Context, title, content string) (*domain.Report, error) {
	if err := authorize(ctx, s.client, s.tokens); err != nil {
		return nil, err
	}
	rec, err := s.client.Create(ctx, domain.ReportsCollection, map[string]any{"title": title, "content": content})
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	s.logger.Info("report created", "id", rec.ID)
	return decodeReport(rec)
}

func (s *ReportService) Update(ctx context.Context, id, title, content string) (*domain.Report, error) {
	if err := authorize(ctx, s.client, s.tokens); err != nil {
		return nil, err
	}
	rec, err := s.client.Update(ctx, domain.ReportsCollection, id, map[string]any{"title": title, "content": content})
	if err != nil {
		return nil, fmt.Errorf("failed to update report %s: %w", id, err)
	}
	return decodeReport(rec)
}

func (s *ReportService) Delete(ctx context.Context, id string) error {
	if err := authorize(ctx, s.client, s.tokens); err != nil {
		return err
	}
	if err := s.client.Delete(ctx, domain.ReportsCollection, id); err != nil {
		return fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	s.logger.Info("report deleted", "id", id)
	return nil
}

func decodeReport(rec *pocketbase.Record) (*domain.Report, error) {
	var r domain.Report
	if err := rec.Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}
