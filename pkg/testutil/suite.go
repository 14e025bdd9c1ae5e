package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rentalneeds/leadflow-backend/pkg/database"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
)

var (
	// Shared across all integration tests in a test binary.
	globalContainer *PostgresContainer
	globalDB        *database.DB
	containerOnce   sync.Once
	containerErr    error
)

// IntegrationSuite provides a migrated PostgreSQL database for integration tests.
type IntegrationSuite struct {
	Container *PostgresContainer
	DB        *database.DB
	Logger    *logger.Logger
}

// NewIntegrationSuite returns the shared suite, starting the container and
// applying migrations on first use. Tests are skipped under -short or when
// no container runtime is reachable.
//
// Usage:
//
//	func TestCustomerRepository_Integration(t *testing.T) {
//	    suite := testutil.NewIntegrationSuite(t)
//	    repo := repository.NewCustomerRepository(suite.DB)
//	    ...
//	}
func NewIntegrationSuite(t *testing.T) *IntegrationSuite {
	t.Helper()
	SkipIfShort(t)

	log := logger.Nop()
	containerOnce.Do(func() {
		// testcontainers panics when no docker host can be found.
		defer func() {
			if r := recover(); r != nil {
				containerErr = fmt.Errorf("docker unavailable: %v", r)
			}
		}()
		ctx := context.Background()
		globalContainer, containerErr = NewPostgresContainer(ctx, DefaultPostgresConfig())
		if containerErr != nil {
			return
		}
		globalDB, containerErr = database.NewWithDSN(globalContainer.DSN, log)
		if containerErr != nil {
			return
		}
		containerErr = globalDB.Migrate(ctx)
	})
	if containerErr != nil {
		t.Skipf("postgres container unavailable: %v", containerErr)
	}

	suite := &IntegrationSuite{Container: globalContainer, DB: globalDB, Logger: log}
	t.Cleanup(func() { suite.Truncate(t) })
	return suite
}

// Truncate empties the customers table between tests.
func (s *IntegrationSuite) Truncate(t *testing.T) {
	t.Helper()
	if _, err := s.DB.ExecContext(context.Background(), `TRUNCATE customers`); err != nil {
		t.Logf("warning: failed to truncate customers: %v", err)
	}
}

// TerminateContainer terminates the shared container.
// Call it from TestMain after m.Run when a package starts the suite.
func TerminateContainer(ctx context.Context) {
	if globalDB != nil {
		_ = globalDB.Close()
	}
	if globalContainer != nil {
		_ = globalContainer.Terminate(ctx)
	}
}
