// Package bootstrap initializes shared infrastructure before the bot starts:
// the structured logger and the catalog persistence backend selected by
// configuration.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdyrbwtat-lang/cloud-bot/catalog"
	coreconfig "github.com/mmdyrbwtat-lang/cloud-bot/core/config"
	coredatabase "github.com/mmdyrbwtat-lang/cloud-bot/core/database"
	"github.com/mmdyrbwtat-lang/cloud-bot/core/logger"
	storagememory "github.com/mmdyrbwtat-lang/cloud-bot/storage/memory"
	storagemongo "github.com/mmdyrbwtat-lang/cloud-bot/storage/mongo"
	storagepostgres "github.com/mmdyrbwtat-lang/cloud-bot/storage/postgres"
)

const connectTimeout = 15 * time.Second

// Options control the generic bootstrap pipeline.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config

	LoggerInit func(*coreconfig.Config) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Store *catalog.Store

	closers []func() error
}

// Close releases the backend connections opened during bootstrap.
func (r *Result) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run initializes the logger and opens the configured storage backend. For
// postgres the schema migrations are applied before the adapter is handed out.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{}
	adapter, err := openAdapter(opts, res)
	if err != nil {
		return nil, err
	}

	var storeOpts []catalog.StoreOption
	if ms := opts.Config.Storage.OpTimeoutMS; ms > 0 {
		storeOpts = append(storeOpts, catalog.WithTimeout(time.Duration(ms)*time.Millisecond))
	}
	res.Store = catalog.NewStore(adapter, storeOpts...)
	return res, nil
}

func openAdapter(opts Options, res *Result) (catalog.Adapter, error) {
	switch opts.Config.Storage.Backend {
	case coreconfig.StorageMemory:
		return storagememory.New(), nil

	case coreconfig.StorageMongo:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		adapter, err := storagemongo.Connect(ctx, opts.Config.Storage.Mongo.URI, opts.Config.Storage.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: mongo initialization failed: %w", err)
		}
		res.closers = append(res.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()
			return adapter.Close(ctx)
		})
		return adapter, nil

	case coreconfig.StoragePostgres:
		db, err := coredatabase.Connect(opts.Database)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
		}
		if err := coredatabase.RunMigrations(opts.Database); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
		res.closers = append(res.closers, db.Close)
		return storagepostgres.NewAdapter(db), nil
	}

	return nil, fmt.Errorf("bootstrap: unknown storage backend %q", opts.Config.Storage.Backend)
}
