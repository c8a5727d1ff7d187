package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// loadConfig настраивает инструмент из окружения: переменные с
// префиксом RGSSKIT_. Логи уходят в stderr, чтобы не смешиваться с
// контрактным выводом команд в stdout.
func loadConfig() {
	viper.SetEnvPrefix("rgsskit")
	viper.AutomaticEnv()
	viper.SetDefault("log_level", "info")
	viper.SetDefault("data_dir", "OUT/Data")

	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
}
