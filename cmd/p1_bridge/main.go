// Forwards DSMR telegrams from a smart meter's P1 port to MQTT.
// Each telegram is framed, CRC16-checked, decoded into OBIS data points and
// published value-by-value under the configured topic prefix.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NotCoffee418/p1_telegram_bridge/pkg/bridge"
	"github.com/NotCoffee418/p1_telegram_bridge/pkg/config"
	"github.com/NotCoffee418/p1_telegram_bridge/pkg/mqtt"
	"github.com/NotCoffee418/p1_telegram_bridge/pkg/routing"
	"github.com/NotCoffee418/p1_telegram_bridge/pkg/statusapi"
	"github.com/NotCoffee418/p1_telegram_bridge/pkg/transport"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := config.LoadBridgeConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	cfg := config.ActiveBridgeConfig

	sink, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MQTT broker")
	}
	defer sink.Close()
	log.WithField("host", cfg.MQTT.Host).Info("connected to MQTT broker")

	source, err := openSource(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open transport")
	}
	defer source.Close()

	routes := routing.DefaultTable().WithOverrides(cfg.Routes)
	b := bridge.New(source, sink, routes, cfg.TopicPrefix, cfg.MaxConsecutiveReadErrors, log)

	if cfg.StatusListenAddress != "" {
		status := statusapi.NewServer(log)
		b.OnTelegram = status.HandleTelegram
		go func() {
			if err := status.Serve(cfg.StatusListenAddress); err != nil {
				log.WithError(err).Error("status API stopped")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("bridge stopped")
	}
	log.Info("shutdown complete")
}

// openSource opens the configured transport. Serial opens are retried with
// bounded exponential backoff; file mode replays a captured stream instead.
func openSource(cfg *config.BridgeConfig, log *logrus.Logger) (transport.LineSource, error) {
	if cfg.InputFile != "" {
		log.WithField("file", cfg.InputFile).Info("replaying telegrams from file")
		return transport.OpenFile(cfg.InputFile)
	}

	const (
		maxRetries     = 10
		baseRetryDelay = 2 * time.Second
		maxRetryDelay  = 60 * time.Second
	)
	readTimeout := time.Duration(cfg.ReadTimeoutSeconds) * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			retryDelay := time.Duration(1<<attempt) * baseRetryDelay
			if retryDelay > maxRetryDelay {
				retryDelay = maxRetryDelay
			}
			log.WithError(lastErr).Warnf("retrying serial open in %v (attempt %d/%d)", retryDelay, attempt+1, maxRetries)
			time.Sleep(retryDelay)
		}

		source, err := transport.OpenSerial(cfg.SerialDevice, cfg.Baudrate, readTimeout)
		if err == nil {
			log.WithField("device", cfg.SerialDevice).Info("connected to P1 port")
			return source, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
