package devbackend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vbonduro/gardenbook/internal/store"
)

// SeedFile describes development fixtures:
//
//	users:
//	  - email: ana@example.com
//	    password: secret
//	collections:
//	  gardens:
//	    - id: rosegarden00001
//	      title: Rose Garden
//	      address: 1 Main St
type SeedFile struct {
	Users       []SeedUser                  `yaml:"users"`
	Collections map[string][]map[string]any `yaml:"collections"`
}

type SeedUser struct {
	Collection string `yaml:"collection"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
}

// seedRecords is the subset of store.RecordStore seeding requires.
type seedRecords interface {
	GetByID(ctx context.Context, collection, id string) (*store.Record, error)
	Create(ctx context.Context, collection string, data map[string]any) (*store.Record, error)
	CreateWithID(ctx context.Context, collection, id string, data map[string]any) (*store.Record, error)
}

// seedUsers is the subset of store.UserStore seeding requires.
type seedUsers interface {
	FindByEmail(ctx context.Context, collection, email string) (*store.User, error)
	Create(ctx context.Context, collection, email, password string) (*store.User, error)
}

func LoadSeedFile(path string) (*SeedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return ParseSeed(f)
}

func ParseSeed(r io.Reader) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// Apply inserts the seed's users and records. Records with an id that already
// exists and users with a known email are skipped, so Apply can run on every
// start.
func (seed *SeedFile) Apply(ctx context.Context, records seedRecords, users seedUsers, logger *slog.Logger) error {
	for _, u := range seed.Users {
		collection := u.Collection
		if collection == "" {
			collection = "users"
		}
		existing, err := users.FindByEmail(ctx, collection, u.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if _, err := users.Create(ctx, collection, u.Email, u.Password); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
		logger.Info("seeded user", "collection", collection, "email", u.Email)
	}

	// Map order is random; seed collections in a stable order.
	names := make([]string, 0, len(seed.Collections))
	for name := range seed.Collections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, collection := range names {
		created := 0
		for _, data := range seed.Collections[collection] {
			id, _ := data["id"].(string)
			fields := make(map[string]any, len(data))
			for k, v := range data {
				if k != "id" {
					fields[k] = v
				}
			}

			if id == "" {
				if _, err := records.Create(ctx, collection, fields); err != nil {
					return fmt.Errorf("failed to seed %s record: %w", collection, err)
				}
				created++
				continue
			}

			existing, err := records.GetByID(ctx, collection, id)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			if _, err := records.CreateWithID(ctx, collection, id, fields); err != nil {
				return fmt.Errorf("failed to seed %s record %s: %w", collection, id, err)
			}
			created++
		}
		logger.Info("seeded collection", "collection", collection, "records", created)
	}
	return nil
}
