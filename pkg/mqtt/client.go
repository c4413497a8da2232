package mqtt

import (
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/NotCoffee418/p1_telegram_bridge/pkg/config"
)

var (
	ErrConnectionFailed = errors.New("mqtt: connection failed")
	ErrNotConnected     = errors.New("mqtt: client not connected")
	ErrPublishFailed    = errors.New("mqtt: publish failed")
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	keepAlive         = 60 * time.Second
	disconnectQuiesce = 1000 // milliseconds
)

// Client wraps the paho MQTT client for fire-and-forget value publishing.
type Client struct {
	client pahomqtt.Client
}

// Connect establishes the broker connection described by cfg.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(keepAlive)
	if cfg.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return &Client{client: client}, nil
}

// Publish sends one decoded value at QoS 0. Delivery is at-most-once;
// failures are reported to the caller for logging only, never retried here.
func (c *Client) Publish(topic, value string) error {
	if !c.client.IsConnected() {
		return ErrNotConnected
	}
	token := c.client.Publish(topic, 0, false, value)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

func (c *Client) Close() {
	c.client.Disconnect(disconnectQuiesce)
}
