package migration

import (
	"context"

	"github.com/hauntpass/backend/internal/entity"
)

// migrate0001 creates every table at its current shape.
func migrate0001(ctx context.Context) error {
	return entity.MigrateTable(ctx)
}
