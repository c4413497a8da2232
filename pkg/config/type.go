package config

type BridgeConfig struct {
	SerialDevice       string `toml:"serial_device"`
	Baudrate           uint   `toml:"baudrate"`
	ReadTimeoutSeconds int    `toml:"read_timeout_seconds"`
	// Replay telegrams from a file instead of the serial port when set.
	InputFile                string `toml:"input_file"`
	TopicPrefix              string `toml:"topic_prefix"`
	MaxConsecutiveReadErrors int    `toml:"max_consecutive_read_errors"`
	// Empty disables the status API.
	StatusListenAddress string `toml:"status_listen_address"`

	MQTT MQTTConfig `toml:"mqtt"`

	// Extra OBIS code to topic path entries, applied on top of the
	// built-in table.
	Routes map[string]string `toml:"routes"`
}

type MQTTConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	TLS      bool   `toml:"tls"`
	ClientID string `toml:"client_id"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}
