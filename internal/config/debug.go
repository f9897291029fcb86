package config

import "os"

func IsDebug() bool {
	return os.Getenv("SELFBOT_DEBUG") == "1"
}
