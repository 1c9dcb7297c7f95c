// Command modbusd runs a Modbus slave against a serial port or TCP
// listener, backed by an in-memory register/coil set. It exists to
// exercise the engine end to end; production deployments are expected to
// embed package modbus directly rather than shell out to this binary.
package main

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	modbus "github.com/lightmodbus-go/modbus"
	"github.com/lightmodbus-go/modbus/internal/config"
	"github.com/lightmodbus-go/modbus/internal/transport"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "modbusd",
		Short: "Run a Modbus RTU/TCP slave backed by an in-memory register bank",
		RunE:  run,
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (defaults baked in if omitted)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(_ *cobra.Command, _ []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	slave := newGuardedSlave(cfg.UnitID, logger)

	if cfg.Kind == "tcp" {
		return serveTCP(cfg, slave, logger)
	}
	return serveRTU(cfg, slave, logger)
}

// guardedSlave serializes access to a Slave across the goroutines a TCP
// listener spawns per connection. The engine itself holds no internal
// synchronization -- it assumes one caller drives it at a time -- so a
// multi-connection server is exactly the caller responsibility the
// concurrency model places outside package modbus.
type guardedSlave struct {
	mu    sync.Mutex
	slave *modbus.Slave
}

func (g *guardedSlave) handleRTU(frame []byte) ([]byte, modbus.ErrorInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if info := g.slave.ParseRequestRTU(frame); !info.IsOk() {
		return nil, info
	}
	resp := g.slave.GetResponse()
	out := make([]byte, len(resp))
	copy(out, resp)
	return out, modbus.Ok
}

func (g *guardedSlave) handleTCP(frame []byte) ([]byte, modbus.ErrorInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if info := g.slave.ParseRequestTCP(frame); !info.IsOk() {
		return nil, info
	}
	resp := g.slave.GetResponse()
	out := make([]byte, len(resp))
	copy(out, resp)
	return out, modbus.Ok
}

// newGuardedSlave builds a Slave over four fixed-size materialized banks,
// all writable except input registers, with register 0 of the holding
// bank write-protected to exercise the mask path.
func newGuardedSlave(unit byte, logger *zap.Logger) *guardedSlave {
	holdingMask := make([]byte, 13)
	holdingMask[0] = 0x01 // register 0 is read-only

	s := &modbus.Slave{
		Holding:  &modbus.RegisterArray{Values: make([]uint16, 100), Mask: holdingMask},
		Input:    &modbus.RegisterArray{Values: make([]uint16, 100)},
		Coils:    &modbus.CoilArray{Values: make([]byte, 13), N: 100},
		Discrete: &modbus.CoilArray{Values: make([]byte, 13), N: 100},
	}
	if info := s.Init(unit, modbus.DefaultSlaveFunctions, modbus.HeapAllocator{}); !info.IsOk() {
		logger.Fatal("slave init failed", zap.Error(info))
	}
	return &guardedSlave{slave: s}
}

func serveRTU(cfg config.Config, slave *guardedSlave, logger *zap.Logger) error {
	conn, err := transport.Open(cfg)
	if err != nil {
		return fmt.Errorf("open serial port: %w", err)
	}
	defer conn.Close()

	logger.Info("listening", zap.String("endpoint", cfg.Endpoint), zap.Uint8("unit_id", cfg.UnitID))
	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			logger.Warn("read failed", zap.Error(err))
			continue
		}
		resp, info := slave.handleRTU(frame)
		if !info.IsOk() {
			logger.Warn("parse failed", zap.Error(info))
			continue
		}
		if len(resp) > 0 {
			if err := conn.WriteFrame(resp); err != nil {
				logger.Warn("write failed", zap.Error(err))
			}
		}
	}
}

func serveTCP(cfg config.Config, slave *guardedSlave, logger *zap.Logger) error {
	listener, err := net.Listen("tcp", cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer listener.Close()

	logger.Info("listening", zap.String("endpoint", cfg.Endpoint))
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	for {
		raw, err := listener.Accept()
		if err != nil {
			logger.Warn("accept failed", zap.Error(err))
			continue
		}
		go handleTCPConn(raw, timeout, slave, logger)
	}
}

func handleTCPConn(raw net.Conn, timeout time.Duration, slave *guardedSlave, logger *zap.Logger) {
	defer raw.Close()
	conn := transport.NewTCPConnFrame(raw, timeout)
	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			return
		}
		resp, info := slave.handleTCP(frame)
		if !info.IsOk() {
			logger.Warn("parse failed", zap.Error(info))
			continue
		}
		if len(resp) > 0 {
			if err := conn.WriteFrame(resp); err != nil {
				return
			}
		}
	}
}
