package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"SOCKET_PORT,default=4000"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=32"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=5s"`
	GCInterval           time.Duration `env:"GC_INTERVAL,default=5m"`
}
