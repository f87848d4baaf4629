package server

import "time"

type Config struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Option func(*Config)

func WithReadTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ReadTimeout = d
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.WriteTimeout = d
	}
}
