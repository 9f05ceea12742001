// Package service holds the record operations behind the garden and report
// pages. Services are cheap and are built per request around a session client.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vbonduro/gardenbook/internal/auth"
	"github.com/vbonduro/gardenbook/internal/pocketbase"
)

var ErrTitleRequired = errors.New("title is required")

// recordClient is the subset of *pocketbase.Client the services require.
type recordClient interface {
	AuthStore() *pocketbase.AuthStore
	List(ctx context.Context, collection string, page, perPage int, opts pocketbase.ListOptions) (*pocketbase.ListResult, error)
	GetOne(ctx context.Context, collection, id string) (*pocketbase.Record, error)
	Create(ctx context.Context, collection string, body map[string]any, files ...pocketbase.File) (*pocketbase.Record, error)
	Update(ctx context.Context, collection, id string, body map[string]any, files ...pocketbase.File) (*pocketbase.Record, error)
	Delete(ctx context.Context, collection, id string) error
	FileURL(record *pocketbase.Record, filename string) string
}

// authorize copies the caller's token into the client before a request.
func authorize(ctx context.Context, client recordClient, tokens auth.TokenProvider) error {
	token, err := tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get auth token: %w", err)
	}
	client.AuthStore().Save(token, nil)
	return nil
}
