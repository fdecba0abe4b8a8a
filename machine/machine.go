package machine

import (
	"errors"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"sc64/bus"
	"sc64/core"
)

// ErrDoubleFault comes back from Run when the core latches its
// terminal fault. The machine state stays inspectable.
var ErrDoubleFault = errors.New("machine: double fault latched")

// IODev answers 32-bit IO-space traffic for a window of addresses.
// A false return becomes a bus error on the core side.
type IODev interface {
	Match(addr uint64) bool
	Read32(addr uint64) (uint32, bool)
	Write32(addr uint64, v uint32) bool
}

// Config collects the build-time switches of one machine.
type Config struct {
	MemSize         int
	Registers       int
	SignExtend32    bool
	Trace           bool
	MaxInstructions int
	ConOut          io.Writer
	Log             *logrus.Logger
}

// Option bends the default Config.
type Option func(*Config)

// WithMemSize sets the RAM size in bytes.
func WithMemSize(n int) Option {
	return func(c *Config) { c.MemSize = n }
}

// WithRegisters sets the implemented register count.
func WithRegisters(n int) Option {
	return func(c *Config) { c.Registers = n }
}

// WithSignExtend32 makes 32-bit loads sign-extend instead of zero-
// extend into the 64-bit registers.
func WithSignExtend32() Option {
	return func(c *Config) { c.SignExtend32 = true }
}

// WithTrace keeps the post-mortem instruction trace.
func WithTrace() Option {
	return func(c *Config) { c.Trace = true }
}

// WithMaxInstructions bounds Run when the caller passes no limit.
func WithMaxInstructions(n int) Option {
	return func(c *Config) { c.MaxInstructions = n }
}

// WithConsole points the console device's output at w.
func WithConsole(w io.Writer) Option {
	return func(c *Config) { c.ConOut = w }
}

// WithLogger installs the process logger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Config) { c.Log = l }
}

// Machine ties one core to RAM and the IO devices and routes the bus
// between them.
type Machine struct {
	CPU *core.CPU
	Mem *Memory
	Con *ConIO

	devs []IODev
	log  *logrus.Logger
	max  int
}

// New builds a machine. The defaults are 1MB of RAM, the full
// register file and a console that writes to stdout.
func New(opts ...Option) *Machine {
	cfg := Config{
		MemSize:         1 << 20,
		Registers:       256,
		MaxInstructions: 1 << 24,
		ConOut:          os.Stdout,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}

	m := &Machine{log: cfg.Log, max: cfg.MaxInstructions}
	m.Mem = NewMemory(cfg.MemSize)
	m.Con = NewConIO(cfg.ConOut)
	m.devs = []IODev{m.Con}
	m.CPU = core.New(m, cfg.Registers, cfg.SignExtend32, cfg.Log)
	m.CPU.SetTracing(cfg.Trace)
	return m
}

// Attach adds another IO device. Devices are matched in attach
// order, the console first.
func (m *Machine) Attach(d IODev) {
	m.devs = append(m.devs, d)
}

// Tick implements the bus responder: IO space goes to the devices,
// everything else to RAM. Empty IO space answers a bus error.
func (m *Machine) Tick(req *bus.Request) bus.Reply {
	if req == nil {
		return bus.Reply{}
	}
	if !req.IO {
		return m.Mem.Tick(req)
	}
	for _, d := range m.devs {
		if !d.Match(req.Addr) {
			continue
		}
		if req.Write {
			if !d.Write32(req.Addr, uint32(req.Data)) {
				return bus.Reply{Fault: true}
			}
			return bus.Reply{Ready: true}
		}
		v, ok := d.Read32(req.Addr)
		if !ok {
			return bus.Reply{Fault: true}
		}
		return bus.Reply{Ready: true, Data: uint64(v)}
	}
	return bus.Reply{Fault: true}
}

// LoadImage copies a raw binary into RAM at offset and points the
// core at it.
func (m *Machine) LoadImage(p []byte, offset uint64) error {
	if err := m.Mem.Load(offset, p); err != nil {
		return err
	}
	m.CPU.SetPC(offset)
	return nil
}

// LoadImageFile is LoadImage from a file on disk.
func (m *Machine) LoadImageFile(path string, offset uint64) error {
	p, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{
		"path":  path,
		"bytes": len(p),
	}).Info("loading image")
	return m.LoadImage(p, offset)
}

// LoadProgram stores assembled words at offset and points the core
// at them.
func (m *Machine) LoadProgram(words []uint32, offset uint64) error {
	if err := m.Mem.LoadWords(offset, words); err != nil {
		return err
	}
	m.CPU.SetPC(offset)
	return nil
}

// Step runs one core cycle.
func (m *Machine) Step() core.State {
	return m.CPU.Step()
}

// StepInstruction runs one whole instruction and reports the cycles
// it took.
func (m *Machine) StepInstruction() int {
	return m.CPU.StepInstruction()
}

// Run executes up to limit instructions (0 means the configured
// maximum) and reports how many completed. It stops early with
// ErrDoubleFault when the core latches the terminal fault.
func (m *Machine) Run(limit int) (int, error) {
	if limit <= 0 {
		limit = m.max
	}
	for n := 0; n < limit; n++ {
		m.CPU.StepInstruction()
		if m.CPU.DoubleFault() {
			m.log.WithFields(logrus.Fields{
				"instructions": n,
				"code":         m.CPU.XNum(),
			}).Error("machine wedged")
			return n, ErrDoubleFault
		}
	}
	return limit, nil
}
