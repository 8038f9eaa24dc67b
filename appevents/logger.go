package appevents

import (
	"go.uber.org/zap"

	"github.com/zenterm/zenbus/event"
	"github.com/zenterm/zenbus/logging"
)

// RegisterLogSubscribers writes log.message payloads at their own level and
// logs every event's payload at debug.
func RegisterLogSubscribers(bus *event.Bus, logger logging.Logger) ([]event.Subscription, error) {
	if logger == nil {
		logger = logging.Named("appevents")
	}

	logSub, err := Subscribe(bus, LogMessage, func(l Log) error {
		switch l.Level {
		case LevelError:
			logger.Error(l.Message)
		case LevelWarn:
			logger.Warn(l.Message)
		default:
			logger.Info(l.Message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	allSub, err := bus.Subscribe(AllEvents, func(p event.Payload) {
		logger.Debug("app event", zap.String("payload_type", p.TypeName()), zap.Any("payload", p))
	})
	if err != nil {
		logSub.Unsubscribe()
		return nil, err
	}

	return []event.Subscription{logSub, allSub}, nil
}
