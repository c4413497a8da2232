package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NotCoffee418/p1_telegram_bridge/pkg/telegram"
	"github.com/NotCoffee418/p1_telegram_bridge/pkg/transport"
)

// Run drives the pipeline until the context is cancelled, the source ends,
// or reads fail maxReadErrors times in a row. Checksum failures and read
// timeouts discard the current telegram and keep the loop alive.
func (b *Bridge) Run(ctx context.Context) error {
	consecutiveErrors := 0
	var lastErr error

	for {
		// Cancellation is only honored between reads, never mid-line, so a
		// shutdown can never publish a partially framed telegram.
		select {
		case <-ctx.Done():
			b.framer.Reset()
			return ctx.Err()
		default:
		}

		raw, err := b.source.ReadLine()
		if err != nil {
			if errors.Is(err, transport.ErrReadTimeout) {
				// The meter went quiet mid-frame; drop the partial telegram.
				b.log.Warn("read timed out, abandoning partial telegram")
				b.framer.Reset()
				continue
			}
			if errors.Is(err, io.EOF) {
				b.log.Info("source ended")
				return nil
			}
			consecutiveErrors++
			lastErr = err
			b.log.WithError(err).Warnf("error reading line (%d/%d)", consecutiveErrors, b.maxReadErrors)
			if consecutiveErrors >= b.maxReadErrors {
				return fmt.Errorf("giving up after %d consecutive read errors: %w", consecutiveErrors, lastErr)
			}
			time.Sleep(time.Second)
			continue
		}
		consecutiveErrors = 0

		tgram, complete := b.framer.Feed(strings.TrimSpace(raw))
		if !complete {
			continue
		}
		b.handleTelegram(tgram)
	}
}

// handleTelegram gates the telegram on its checksum, then publishes every
// decoded point independently of the others' outcomes.
func (b *Bridge) handleTelegram(tgram string) {
	computed, err := telegram.Verify(tgram)
	if err != nil {
		var mismatch *telegram.MismatchError
		if errors.As(err, &mismatch) {
			b.log.WithFields(logrus.Fields{
				"claimed":  fmt.Sprintf("%04X", mismatch.Claimed),
				"computed": fmt.Sprintf("%04X", mismatch.Computed),
			}).Warn("checksum mismatch, discarding telegram")
		} else {
			b.log.WithError(err).Warn("discarding unverifiable telegram")
		}
		return
	}

	points := telegram.DecodeTelegram(tgram)
	for _, point := range points {
		topic := b.topicPrefix + b.routes.Route(point.Code)
		if err := b.sink.Publish(topic, point.Value); err != nil {
			b.log.WithError(err).WithField("topic", topic).Warn("publish failed")
		}
	}
	b.log.WithFields(logrus.Fields{
		"points": len(points),
		"crc":    fmt.Sprintf("%04X", computed),
	}).Debug("telegram forwarded")

	if b.OnTelegram != nil {
		b.OnTelegram(points)
	}
}
