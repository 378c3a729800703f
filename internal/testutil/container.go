package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a postgres testcontainer.
type PostgresContainer struct {
	*postgres.PostgresContainer
	ConnectionString string
}

// NewPostgresContainer starts a disposable PostgreSQL for integration tests.
func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("incidentlog"),
		postgres.WithUsername("incidentlog"),
		postgres.WithPassword("incidentlog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &PostgresContainer{
		PostgresContainer: container,
		ConnectionString:  connStr,
	}, nil
}

// DynamoDBLocalContainer wraps an in-memory DynamoDB Local container.
type DynamoDBLocalContainer struct {
	testcontainers.Container
	Endpoint string
}

// NewDynamoDBLocalContainer starts DynamoDB Local for integration tests.
func NewDynamoDBLocalContainer(ctx context.Context) (*DynamoDBLocalContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "amazon/dynamodb-local:2.5.2",
		ExposedPorts: []string{"8000/tcp"},
		Cmd:          []string{"-jar", "DynamoDBLocal.jar", "-inMemory", "-sharedDb"},
		WaitingFor:   wait.ForListeningPort("8000/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start dynamodb local container: %w", err)
	}

	endpoint, err := container.PortEndpoint(ctx, "8000/tcp", "http")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("get dynamodb endpoint: %w", err)
	}

	return &DynamoDBLocalContainer{
		Container: container,
		Endpoint:  endpoint,
	}, nil
}
