// Package redis connects to Redis through github.com/redis/go-redis/v9.
//
// Connect retries the initial ping according to Config and Healthcheck adapts
// a client to a readiness probe:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	server.HealthCheckHandler(ctx, log, redis.Healthcheck(client))
package redis
