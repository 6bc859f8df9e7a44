package repository_test

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type postgresEnv struct {
	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
}

func startPostgres(ctx context.Context) (postgresEnv, error) {
	container, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.WithDatabase("storefront"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"../migrations/01_orders.up.sql"),
	)
	if err != nil {
		return postgresEnv{}, fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return postgresEnv{container: container}, fmt.Errorf("container.ConnectionString: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return postgresEnv{container: container}, fmt.Errorf("pgxpool.New: %w", err)
	}

	return postgresEnv{container: container, pool: pool}, nil
}

func (e postgresEnv) stop() error {
	if e.pool != nil {
		e.pool.Close()
	}
	if e.container == nil {
		return nil
	}
	return testcontainers.TerminateContainer(e.container)
}
