// Package config loads the YAML configuration shared by the modbusd and
// modbusctl demo binaries: which wire framing and transport to use, and
// the parameters each needs (serial port settings, TCP endpoint, unit id).
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidParameter = errors.New("modbus: invalid configuration parameter")

// Config describes how a demo binary should frame its traffic (Mode) and
// which transport carries it (Kind).
type Config struct {
	// Mode selects the wire framing: "rtu" or "tcp".
	Mode string `yaml:"mode"`
	// Kind selects the transport: "serial" for Mode "rtu", "tcp" for Mode
	// "tcp".
	Kind string `yaml:"kind"`
	// Endpoint is a serial device path (e.g. /dev/ttyUSB0) for Kind
	// "serial", or a host:port for Kind "tcp".
	Endpoint string `yaml:"endpoint"`
	// BaudRate, DataBits, Parity and StopBits configure the serial port
	// when Kind is "serial". Parity is one of "N", "E", "O".
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"`
	StopBits int    `yaml:"stop_bits"`
	// UnitID is the slave address (RTU) or unit identifier (TCP) this
	// binary addresses or answers to.
	UnitID byte `yaml:"unit_id"`
	// Timeout, in milliseconds, for a single request/response round trip
	// or serial read.
	TimeoutMS int `yaml:"timeout_ms"`
}

// Default returns a Config with the serial parameters liblightmodbus'
// examples commonly assume: 9600 8N1.
func Default() Config {
	return Config{
		Mode:      "rtu",
		Kind:      "serial",
		Endpoint:  "/dev/ttyUSB0",
		BaudRate:  9600,
		DataBits:  8,
		Parity:    "N",
		StopBits:  1,
		UnitID:    1,
		TimeoutMS: 1000,
	}
}

// Load reads and parses a YAML config file, starting from Default() so a
// file only needs to override the fields it cares about.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Verify()
}

// Verify reports whether cfg describes a supported mode/transport pair.
func (cfg Config) Verify() error {
	switch cfg.Mode {
	case "rtu", "tcp":
	default:
		return ErrInvalidParameter
	}
	switch cfg.Kind {
	case "serial", "tcp":
	default:
		return ErrInvalidParameter
	}
	if cfg.Mode == "rtu" && cfg.Kind != "serial" {
		return ErrInvalidParameter
	}
	if cfg.Mode == "tcp" && cfg.Kind != "tcp" {
		return ErrInvalidParameter
	}
	if cfg.Endpoint == "" {
		return ErrInvalidParameter
	}
	return nil
}
