package bridge

import (
	"github.com/sirupsen/logrus"

	"github.com/NotCoffee418/p1_telegram_bridge/pkg/routing"
	"github.com/NotCoffee418/p1_telegram_bridge/pkg/telegram"
	"github.com/NotCoffee418/p1_telegram_bridge/pkg/transport"
)

// Sink receives decoded values, one publish per data point. Failures are
// logged by the bridge and never abort the remaining points of a telegram.
type Sink interface {
	Publish(topic, value string) error
}

// Bridge drives the read-frame-verify-decode-publish pipeline for a single
// meter. Each Bridge owns its transport and framer exclusively; the routing
// table may be shared across instances.
type Bridge struct {
	source        transport.LineSource
	sink          Sink
	routes        routing.Table
	topicPrefix   string
	maxReadErrors int
	framer        *telegram.Framer
	log           *logrus.Entry

	// OnTelegram, when set, receives the decoded points of every verified
	// telegram after they have been published. Must not block.
	OnTelegram func(points []telegram.DataPoint)
}

func New(
	source transport.LineSource,
	sink Sink,
	routes routing.Table,
	topicPrefix string,
	maxReadErrors int,
	logger *logrus.Logger,
) *Bridge {
	if maxReadErrors <= 0 {
		maxReadErrors = 10
	}
	return &Bridge{
		source:        source,
		sink:          sink,
		routes:        routes,
		topicPrefix:   topicPrefix,
		maxReadErrors: maxReadErrors,
		framer:        telegram.NewFramer(),
		log:           logrus.NewEntry(logger),
	}
}
