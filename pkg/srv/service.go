package srv

import (
	"context"

	"github.com/sandevgo/docchat/pkg/log"
)

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices runs every service on its own goroutine. A service that
// fails to start cancels ctx so the rest shut down with it.
func StartServices(ctx context.Context, cancel context.CancelFunc, services []Service) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				logger.Error().Err(err).Msgf("%T failed to start", service)
				cancel()
			}
		}(service)
	}
}

// ShutdownServices blocks until ctx is done, then shuts services down in order.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()
	for _, service := range services {
		if err := service.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", service)
		}
	}
}
