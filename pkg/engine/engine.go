package engine

import (
	"github.com/rs/zerolog"

	"github.com/rostra-dev/rostra/pkg/events"
	rostralog "github.com/rostra-dev/rostra/pkg/log"
	"github.com/rostra-dev/rostra/pkg/storage"
)

// Engine implements the DAG index, content refcount/state machine, and
// ingestion API over a single storage.Store. All its write
// methods open exactly one store transaction per call.
type Engine struct {
	store *storage.Store
	broker *events.Broker
	log zerolog.Logger
}

// New wires an Engine to a store and the broker it publishes post-commit
// notifications to.
func New(store *storage.Store, broker *events.Broker) *Engine {
	return &Engine{
		store: store,
		broker: broker,
		log: rostralog.WithComponent("engine"),
	}
}
