package http

import (
	"github.com/lurraldea/geopoint/internal/adapters/postgres"
	"github.com/lurraldea/geopoint/internal/adapters/valkey"
	"github.com/lurraldea/geopoint/internal/core/usecases"
)

// Dependencies bundles everything the HTTP handlers need.
type Dependencies struct {
	DB       *postgres.DB
	Cache    *valkey.Cache
	Resolver *usecases.ResolveService
}
