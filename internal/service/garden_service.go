package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vbonduro/gardenbook/internal/auth"
	"github.com/vbonduro/gardenbook/internal/domain"
	"github.com/vbonduro/gardenbook/internal/pocketbase"
)

const photosField = "photos"

// Upload is a photo attached to a garden create or edit.
type Upload struct {
	Name string
	Data []byte
}

type GardenInput struct {
	Title   string
	Address string
	Photos  []Upload
}

// GardenDetail is a garden plus resolved URLs for each of its photos, in the
// order they are stored.
type GardenDetail struct {
	domain.Garden
	PhotoURLs []string
}

type GardenService struct {
	client recordClient
	tokens auth.TokenProvider
	logger *slog.Logger
}

func NewGardenService(client recordClient, tokens auth.TokenProvider, logger *slog.Logger) *GardenService {
	return &GardenService{client: client, tokens: tokens, logger: logger}
}

func (s *GardenService) Get(ctx context.Context, id string) (*GardenDetail, error) {
	if err := authorize(ctx, s.client, s.tokens); err != nil {
		return nil, err
	}
	rec, err := s.client.GetOne(ctx, domain.GardensCollection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get garden %s: %w", id, err)
	}
	return s.detail(rec), nil
}

func (s *GardenService) Create(ctx context.Context, in GardenInput) (*GardenDetail, error) {
	body, err := gardenBody(in)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, s.client, s.tokens); err != nil {
		return nil, err
	}

	rec, err := s.client.Create(ctx, domain.GardensCollection, body, photoFiles(in.Photos)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create garden: %w", err)
	}
	s.logger.Info("garden created", "id", rec.ID, "photos", len(in.Photos))
	return s.detail(rec), nil
}

// Update replaces the title and address and appends any new photos.
func (s *GardenService) Update(ctx context.Context, id string, in GardenInput) (*GardenDetail, error) {
	body, err := gardenBody(in)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, s.client, s.tokens); err != nil {
		return nil, err
	}

	rec, err := s.client.Update(ctx, domain.GardensCollection, id, body, photoFiles(in.Photos)...)
	if err != nil {
		return nil, fmt.Errorf("failed to update garden %s: %w", id, err)
	}
	s.logger.Info("garden updated", "id", id, "photos_added", len(in.Photos))
	return s.detail(rec), nil
}

func (s *GardenService) detail(rec *pocketbase.Record) *GardenDetail {
	g := domain.Garden{
		ID:      rec.ID,
		Title:   rec.GetString("title"),
		Address: rec.GetString("address"),
		Photos:  rec.GetStringSlice(photosField),
	}

	urls := make([]string, 0, len(g.Photos))
	for _, name := range g.Photos {
		if u := s.client.FileURL(rec, name); u != "" {
			urls = append(urls, u)
		}
	}
	return &GardenDetail{Garden: g, PhotoURLs: urls}
}

func gardenBody(in GardenInput) (map[string]any, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	return map[string]any{
		"title":   title,
		"address": strings.TrimSpace(in.Address),
	}, nil
}

func photoFiles(uploads []Upload) []pocketbase.File {
	files := make([]pocketbase.File, 0, len(uploads))
	for _, u := range uploads {
		files = append(files, pocketbase.File{Field: photosField, Name: u.Name, Reader: bytes.NewReader(u.Data)})
	}
	return files
}
