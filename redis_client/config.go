package redis_client

import "net"

type Config struct {
	Host     string `mapstructure:"host" json:"host" yaml:"host" default:"127.0.0.1" validate:"required"`
	Port     string `mapstructure:"port" json:"port" yaml:"port" default:"6379" validate:"required"`
	Password string `mapstructure:"password" json:"password" yaml:"password"`
	DB       int    `mapstructure:"db" json:"db" yaml:"db" validate:"gte=0,lte=15"`
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}
