// Package redis connects to Redis with retries and exposes a namespaced
// key-value Storage over go-redis.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := redis.NewStorage(client, redis.WithKeyPrefix(cfg.KeyPrefix))
//
//	_ = store.Set(ctx, "auth_session", payload)
//	data, err := store.Get(ctx, "auth_session") // nil, nil when absent
//
// Storage.Ping doubles as the readiness probe.
package redis
