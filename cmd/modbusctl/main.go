// Command modbusctl issues a single Modbus master request over a serial
// port or TCP connection and prints the decoded response. It exists to
// exercise the master engine end to end against a real transport.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	modbus "github.com/lightmodbus-go/modbus"
	"github.com/lightmodbus-go/modbus/internal/config"
	"github.com/lightmodbus-go/modbus/internal/transport"
)

var (
	configPath string
	address    uint16
	quantity   uint16
	value      uint16
)

func main() {
	root := &cobra.Command{
		Use:   "modbusctl",
		Short: "Issue a single Modbus request and print the response",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (defaults baked in if omitted)")

	readHolding := &cobra.Command{
		Use:   "read-holding",
		Short: "Read holding registers (function 0x03)",
		RunE:  runRead(modbus.FuncReadHoldingRegisters),
	}
	readHolding.Flags().Uint16Var(&address, "address", 0, "starting register address")
	readHolding.Flags().Uint16Var(&quantity, "quantity", 1, "number of registers")

	readInput := &cobra.Command{
		Use:   "read-input",
		Short: "Read input registers (function 0x04)",
		RunE:  runRead(modbus.FuncReadInputRegisters),
	}
	readInput.Flags().Uint16Var(&address, "address", 0, "starting register address")
	readInput.Flags().Uint16Var(&quantity, "quantity", 1, "number of registers")

	readCoils := &cobra.Command{
		Use:   "read-coils",
		Short: "Read coils (function 0x01)",
		RunE:  runRead(modbus.FuncReadCoils),
	}
	readCoils.Flags().Uint16Var(&address, "address", 0, "starting coil address")
	readCoils.Flags().Uint16Var(&quantity, "quantity", 1, "number of coils")

	writeRegister := &cobra.Command{
		Use:   "write-register",
		Short: "Write a single holding register (function 0x06)",
		RunE:  runWriteRegister,
	}
	writeRegister.Flags().Uint16Var(&address, "address", 0, "register address")
	writeRegister.Flags().Uint16Var(&value, "value", 0, "value to write")

	writeCoil := &cobra.Command{
		Use:   "write-coil",
		Short: "Write a single coil (function 0x05)",
		RunE:  runWriteCoil,
	}
	writeCoil.Flags().Uint16Var(&address, "address", 0, "coil address")
	writeCoil.Flags().Uint16Var(&value, "value", 0, "0 for off, non-zero for on")

	root.AddCommand(readHolding, readInput, readCoils, writeRegister, writeCoil)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if configPath == "" {
		return cfg, nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newMaster builds a Master whose DataCallback prints each decoded value
// and whose ExceptionCallback prints the reported exception.
func newMaster() *modbus.Master {
	m := &modbus.Master{}
	dataCallback := func(args modbus.DataCallbackArgs) modbus.ErrorInfo {
		fmt.Printf("%s[%d] = %d\n", args.Type, args.Index, args.Value)
		return modbus.Ok
	}
	exceptionCallback := func(addr, function byte, ex modbus.Exception) {
		fmt.Printf("slave %d reported exception for function 0x%02X: %s\n", addr, function, ex)
	}
	m.Init(dataCallback, exceptionCallback, modbus.DefaultMasterFunctions, modbus.HeapAllocator{})
	return m
}

func roundTrip(cfg config.Config, build func(m *modbus.Master) modbus.ErrorInfo, parse func(m *modbus.Master, req, resp []byte) modbus.ErrorInfo) error {
	m := newMaster()
	if info := build(m); !info.IsOk() {
		return fmt.Errorf("build request: %w", info)
	}

	conn, err := transport.Open(cfg)
	if err != nil {
		return fmt.Errorf("open transport: %w", err)
	}
	defer conn.Close()

	req := m.GetRequest()
	if err := conn.WriteFrame(req); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	deadline := time.Now().Add(time.Duration(cfg.TimeoutMS) * time.Millisecond)
	var resp []byte
	for resp == nil && time.Now().Before(deadline) {
		resp, err = conn.ReadFrame()
	}
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if info := parse(m, req, resp); !info.IsOk() {
		return fmt.Errorf("parse response: %w", info)
	}
	return nil
}

func runRead(function byte) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return roundTrip(cfg,
			func(m *modbus.Master) modbus.ErrorInfo {
				switch function {
				case modbus.FuncReadHoldingRegisters:
					return m.ReadHoldingRegistersRTU(cfg.UnitID, address, quantity)
				case modbus.FuncReadInputRegisters:
					return m.ReadInputRegistersRTU(cfg.UnitID, address, quantity)
				case modbus.FuncReadCoils:
					return m.ReadCoilsRTU(cfg.UnitID, address, quantity)
				}
				return modbus.Ok
			},
			func(m *modbus.Master, req, resp []byte) modbus.ErrorInfo {
				return m.ParseResponseRTU(req, resp)
			},
		)
	}
}

func runWriteRegister(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return roundTrip(cfg,
		func(m *modbus.Master) modbus.ErrorInfo {
			return m.WriteSingleRegisterRTU(cfg.UnitID, address, value)
		},
		func(m *modbus.Master, req, resp []byte) modbus.ErrorInfo {
			return m.ParseResponseRTU(req, resp)
		},
	)
}

func runWriteCoil(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return roundTrip(cfg,
		func(m *modbus.Master) modbus.ErrorInfo {
			return m.WriteSingleCoilRTU(cfg.UnitID, address, value != 0)
		},
		func(m *modbus.Master, req, resp []byte) modbus.ErrorInfo {
			return m.ParseResponseRTU(req, resp)
		},
	)
}
