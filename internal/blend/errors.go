package blend

import (
	"errors"

	"go.uber.org/zap"
)

// Distributor errors. Every one of them is recoverable; callers log and
// carry on with the tick.
var (
	ErrUninitialized      = errors.New("blend: distributor not initialized")
	ErrAlreadyInitialized = errors.New("blend: distributor already initialized")
	ErrInvalidZone        = errors.New("blend: invalid zone")
	ErrUnregisteredZone   = errors.New("blend: zone not registered")
)

// logResult reports a distributor error at the level matching its kind.
func logResult(log *zap.Logger, err error, fields ...zap.Field) {
	if err == nil {
		return
	}
	fields = append(fields, zap.Error(err))
	switch {
	case errors.Is(err, ErrAlreadyInitialized):
		log.Warn("blend weight distributor", fields...)
	case errors.Is(err, ErrInvalidZone):
		// Destroyed zones are expected during teardown.
		log.Debug("blend weight distributor", fields...)
	default:
		log.Error("blend weight distributor", fields...)
	}
}
