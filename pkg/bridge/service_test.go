package bridge

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NotCoffee418/p1_telegram_bridge/pkg/routing"
	"github.com/NotCoffee418/p1_telegram_bridge/pkg/telegram"
	"github.com/NotCoffee418/p1_telegram_bridge/pkg/transport"
)

// Trailer checksums in these tests are correct CRC16/ARC values for the
// preceding telegram bytes unless a test says otherwise.

type readResult struct {
	line string
	err  error
}

type fakeSource struct {
	reads []readResult
	pos   int
}

func (f *fakeSource) ReadLine() (string, error) {
	if f.pos >= len(f.reads) {
		return "", io.EOF
	}
	r := f.reads[f.pos]
	f.pos++
	return r.line, r.err
}

func (f *fakeSource) Close() error { return nil }

func lines(lines ...string) *fakeSource {
	src := &fakeSource{}
	for _, line := range lines {
		src.reads = append(src.reads, readResult{line: line})
	}
	return src
}

type publishCall struct {
	topic string
	value string
}

type fakeSink struct {
	published []publishCall
	failTopic string
}

func (f *fakeSink) Publish(topic, value string) error {
	if topic == f.failTopic {
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, publishCall{topic: topic, value: value})
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestBridge(source transport.LineSource, sink Sink) *Bridge {
	return New(source, sink, routing.DefaultTable(), "p1/", 10, quietLogger())
}

func TestBridgeForwardsVerifiedTelegram(t *testing.T) {
	sink := &fakeSink{}
	b := newTestBridge(lines(
		`/ISK5\2M550T-1012`,
		"1-0:1.8.1(000123.456*kWh)",
		"!9148",
	), sink)

	err := b.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sink.published, 1)
	assert.Equal(t, "p1/electricity/cumulative/consumed/tariff_1", sink.published[0].topic)
	assert.Equal(t, "000123.456*kWh", sink.published[0].value)
}

func TestBridgeDiscardsMismatchAndResumes(t *testing.T) {
	sink := &fakeSink{}
	b := newTestBridge(lines(
		// Correct checksum is 9148; last digit altered.
		`/ISK5\2M550T-1012`,
		"1-0:1.8.1(000123.456*kWh)",
		"!9140",
		// Next telegram is intact and must still be forwarded.
		"0-1:96.1.0(ABC123)",
		"!C8E2",
	), sink)

	err := b.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sink.published, 1)
	assert.Equal(t, "p1/gas/status/equipment_id", sink.published[0].topic)
	assert.Equal(t, "ABC123", sink.published[0].value)
}

func TestBridgeRoutesUnknownCodeToFallback(t *testing.T) {
	sink := &fakeSink{}
	b := newTestBridge(lines(
		"0-2:24.2.1(12345.678*m3)",
		"!094E",
	), sink)

	require.NoError(t, b.Run(context.Background()))

	require.Len(t, sink.published, 1)
	assert.Equal(t, "p1/unidentified_code/0-2:24.2.1", sink.published[0].topic)
}

func TestBridgePublishFailureDoesNotStopRemainingPoints(t *testing.T) {
	sink := &fakeSink{failTopic: "p1/electricity/cumulative/consumed/tariff_1"}
	b := newTestBridge(lines(
		"1-0:1.8.1(000123.456*kWh)",
		"1-0:1.8.2(000456.789*kWh)",
		"!1AAE",
	), sink)

	require.NoError(t, b.Run(context.Background()))

	require.Len(t, sink.published, 1)
	assert.Equal(t, "p1/electricity/cumulative/consumed/tariff_2", sink.published[0].topic)
	assert.Equal(t, "000456.789*kWh", sink.published[0].value)
}

func TestBridgeTimeoutAbandonsPartialFrame(t *testing.T) {
	sink := &fakeSink{}
	src := &fakeSource{reads: []readResult{
		// Partial frame, then the meter goes quiet.
		{line: `/ISK5\2M550T-1012`},
		{err: transport.ErrReadTimeout},
		// A fresh complete telegram follows. Had the partial frame not been
		// abandoned, its bytes would corrupt this telegram's checksum.
		{line: "0-1:96.1.0(ABC123)"},
		{line: "!C8E2"},
	}}
	b := newTestBridge(src, sink)

	require.NoError(t, b.Run(context.Background()))

	require.Len(t, sink.published, 1)
	assert.Equal(t, "p1/gas/status/equipment_id", sink.published[0].topic)
}

func TestBridgeStopsAfterConsecutiveReadErrors(t *testing.T) {
	readErr := errors.New("device unplugged")
	src := &fakeSource{reads: []readResult{
		{err: readErr},
		{err: readErr},
		{err: readErr},
	}}
	sink := &fakeSink{}
	b := New(src, sink, routing.DefaultTable(), "p1/", 2, quietLogger())

	err := b.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, readErr)
	assert.Empty(t, sink.published)
}

func TestBridgeHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := newTestBridge(lines("1-0:1.8.1(000123.456*kWh)"), &fakeSink{})
	err := b.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBridgeOnTelegramCallback(t *testing.T) {
	sink := &fakeSink{}
	b := newTestBridge(lines(
		"1-0:1.8.1(000123.456*kWh)",
		"1-0:1.8.2(000456.789*kWh)",
		"!1AAE",
	), sink)

	var got []telegram.DataPoint
	b.OnTelegram = func(points []telegram.DataPoint) { got = points }

	require.NoError(t, b.Run(context.Background()))
	require.Len(t, got, 2)
	assert.Equal(t, "1-0:1.8.1", got[0].Code)
	assert.Equal(t, "1-0:1.8.2", got[1].Code)
}
