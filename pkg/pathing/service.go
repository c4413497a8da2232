package pathing

import (
	"log"
	"os"
)

// Ensure the config directory exists on startup
func init() {
	dir := GetConfigDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal(err)
		}
	}
}

func GetConfigDir() string {
	return "/etc/p1_telegram_bridge"
}
