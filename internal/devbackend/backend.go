package devbackend

import (
	"database/sql"
	"log/slog"

	"github.com/vbonduro/gardenbook/internal/db"
	"github.com/vbonduro/gardenbook/internal/photostore/local"
	"github.com/vbonduro/gardenbook/internal/store"
)

// Backend bundles a Server with the stores behind it.
type Backend struct {
	*Server
	Records *store.RecordStore
	Users   *store.UserStore

	db *sql.DB
}

// Open opens (and migrates) the database at dbPath and serves files from
// photoPath.
func Open(dbPath, photoPath string, opts Options, logger *slog.Logger) (*Backend, error) {
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return newBackend(database, photoPath, opts, logger)
}

// OpenForTesting is Open over a private in-memory database.
func OpenForTesting(photoPath string, opts Options, logger *slog.Logger) (*Backend, error) {
	database, err := db.OpenForTesting()
	if err != nil {
		return nil, err
	}
	return newBackend(database, photoPath, opts, logger)
}

func newBackend(database *sql.DB, photoPath string, opts Options, logger *slog.Logger) (*Backend, error) {
	photos, err := local.NewLocalPhotoStore(photoPath)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	records := store.NewRecordStore(database)
	users := store.NewUserStore(database)
	return &Backend{
		Server:  NewServer(records, users, photos, opts, logger),
		Records: records,
		Users:   users,
		db:      database,
	}, nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}
