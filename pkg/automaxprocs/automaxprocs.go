// Package automaxprocs sets GOMAXPROCS from the container CPU quota
package automaxprocs

import (
	"runtime"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/forest33/arena/pkg/logger"
)

// Init applies the quota, the returned function restores the previous value
func Init(log *logger.Logger) func() {
	undo, err := maxprocs.Set(maxprocs.Logger(log.Printf))
	if err != nil {
		log.Error().Err(err).Msg("failed to set automaxprocs")
		return func() {}
	}
	log.Debug().Int("gomaxprocs", runtime.GOMAXPROCS(0)).Msg("GOMAXPROCS set")
	return undo
}
