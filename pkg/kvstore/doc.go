// Package kvstore defines the durable key-value capability used for
// client-local state and provides its backends.
//
// Backends:
//
//   - memory: process-local map, lost on exit; used in tests
//   - file: a single JSON document on disk, rewritten atomically
//   - sqlite: a kv_records table in a SQLite database (modernc.org/sqlite)
//   - redis: see pkg/redis
//   - postgres: see pkg/pg
//
// Open selects a backend from Config:
//
//	var cfg kvstore.Config
//	config.MustLoad(&cfg)
//
//	backend, err := kvstore.Open(ctx, cfg, log)
//	if err != nil {
//		return err
//	}
//	defer backend.Close()
//
// Every backend returns nil, nil from Get when the key is absent.
package kvstore
