// Package pg connects to PostgreSQL through a pgx pool, applies the embedded
// goose migrations and provides a key-value Storage backed by the
// kv_records table.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//	store := pg.NewStorage(pool)
package pg
