package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/NotCoffee418/p1_telegram_bridge/pkg/pathing"
)

var ActiveBridgeConfig *BridgeConfig

func DefaultBridgeConfig() *BridgeConfig {
	return &BridgeConfig{
		SerialDevice:             "/dev/ttyUSB0",
		Baudrate:                 115200,
		ReadTimeoutSeconds:       12,
		TopicPrefix:              "p1/",
		MaxConsecutiveReadErrors: 10,
		MQTT: MQTTConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "p1_meter",
			Username: "p1",
		},
	}
}

func LoadBridgeConfig() error {
	configPath := filepath.Join(pathing.GetConfigDir(), "bridge.toml")

	// Create default if not exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultBridgeConfig()
		cfgFile, err := os.Create(configPath)
		if err != nil {
			return err
		}
		defer cfgFile.Close()
		toml.NewEncoder(cfgFile).Encode(cfg)
		ActiveBridgeConfig = cfg
		return nil
	}

	// Load existing config
	var config BridgeConfig
	_, err := toml.DecodeFile(configPath, &config)
	if err != nil {
		return err
	}
	ActiveBridgeConfig = &config
	return nil
}
