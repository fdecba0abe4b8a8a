// Package machine validation suite: whole programs through the real
// bus, checking the architectural contract end to end.
// Run with: go test ./machine/... -run "Suite" -v
package machine_test

import (
	"bytes"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"sc64/core"
	"sc64/exception"
	"sc64/machine"
	"sc64/msw"
)

// checkResult captures one validation program's outcome for the
// summary table.
type checkResult struct {
	Name         string
	Instructions int
	Code         exception.Code
	Pass         bool
}

var checkResults []checkResult

func record(name string, n int, code exception.Code, pass bool) {
	checkResults = append(checkResults, checkResult{
		Name:         name,
		Instructions: n,
		Code:         code,
		Pass:         pass,
	})
}

var _ = AfterSuite(func() {
	fmt.Println("\n========================================")
	fmt.Println("SC64 Validation Summary")
	fmt.Println("========================================")
	allPassed := true
	for _, r := range checkResults {
		status := "ok  "
		if !r.Pass {
			status = "FAIL"
			allPassed = false
		}
		fmt.Printf("%s %-24s insts=%-4d exc=%d (%s)\n",
			status, r.Name, r.Instructions, uint8(r.Code), r.Code)
	}
	fmt.Println("========================================")
	if !allPassed {
		fmt.Println("Some validation programs FAILED!")
	}
})

var _ = Describe("Validation Programs", func() {
	var (
		m      *machine.Machine
		conBuf *bytes.Buffer
	)

	quiet := func() *logrus.Logger {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}

	BeforeEach(func() {
		conBuf = &bytes.Buffer{}
		m = machine.New(
			machine.WithMemSize(1<<18),
			machine.WithConsole(conBuf),
			machine.WithLogger(quiet()),
		)
	})

	JustAfterEach(func() {
		if !CurrentSpecReport().Failed() {
			return
		}
		fmt.Print(spew.Sdump(struct {
			PC     uint64
			State  core.State
			XNum   exception.Code
			Double bool
			Flags  msw.Word
			Mirror msw.Word
		}{m.CPU.PC(), m.CPU.State(), m.CPU.XNum(), m.CPU.DoubleFault(),
			m.CPU.Flags(), m.CPU.Mirror()}))
	})

	// Straight-line programs end by running into word zero, which is
	// an invalid instruction and, with exceptions still masked, wedges
	// the machine. Run reporting the terminal fault is the halt.
	runToHalt := func(prog []uint32) int {
		Expect(m.LoadProgram(prog, 0)).To(Succeed())
		n, err := m.Run(0)
		Expect(err).To(MatchError(machine.ErrDoubleFault))
		return n
	}

	Describe("Straight-line execution", func() {
		Context("store round trip", func() {
			It("leaves the stored word in memory and both registers intact", func() {
				n := runToHalt([]uint32{
					core.Xor(1, 1, 1),
					core.Addi(2, 1, 8),
					core.Store(2, 1, 12),
				})

				pass := m.Mem.Word(12) == 8 && m.CPU.Reg(1) == 0 && m.CPU.Reg(2) == 8
				record("store_round_trip", n, m.CPU.XNum(), pass)

				Expect(n).To(Equal(3))
				Expect(m.Mem.Word(12)).To(Equal(uint32(8)))
				Expect(m.CPU.Reg(1)).To(BeZero())
				Expect(m.CPU.Reg(2)).To(Equal(uint64(8)))
			})
		})

		Context("control register round trips", func() {
			It("reads back what was written, minus the derived views", func() {
				n := runToHalt([]uint32{
					core.Ldi(1, 0x123456),
					core.Crset(core.CregScr0, 1),
					core.Crget(2, core.CregScr0),
					core.Ldi(3, 0x8015),
					core.Crset(core.CregMMUV, 3),
					core.Crget(4, core.CregMMUV),
					core.Crset(core.CregID, 1), // read-only, swallowed
					core.Crget(5, core.CregID),
				})

				pass := m.CPU.Reg(2) == 0x123456 && m.CPU.Reg(4) == 0x8015
				record("creg_round_trip", n, m.CPU.XNum(), pass)

				Expect(m.CPU.Reg(2)).To(Equal(uint64(0x123456)))
				Expect(m.CPU.Reg(4)).To(Equal(uint64(0x8015)))
				Expect(m.CPU.Reg(5)).To(Equal(uint64(0x53433634000802FF)))
			})
		})
	})

	Describe("Protection", func() {
		Context("register ceiling", func() {
			It("cuts the file at the configured index", func() {
				n := runToHalt([]uint32{
					core.Ldi(1, 5),
					core.Add(2, 1, 1), // full file still reachable
					core.Ldi(3, 0x030001),
					core.Crset(core.CregFlags, 3), // ceiling 3 from here
					core.Add(3, 1, 1),             // inside the ceiling
					core.Add(5, 1, 1),             // above it, terminal
				})

				pass := m.CPU.XNum() == exception.Register && m.CPU.Reg(5) == 0
				record("register_ceiling", n, m.CPU.XNum(), pass)

				Expect(n).To(Equal(5))
				Expect(m.CPU.XNum()).To(Equal(exception.Register))
				Expect(m.CPU.Reg(2)).To(Equal(uint64(10)))
				Expect(m.CPU.Reg(3)).To(Equal(uint64(10)))
				Expect(m.CPU.Reg(5)).To(BeZero())
			})
		})

		Context("opcode veto", func() {
			It("turns a vetoed opcode into the overload trap", func() {
				n := runToHalt([]uint32{
					core.Ldi(1, 0x20), // bit 5: the xor opcode
					core.Crset(core.CregOver, 1),
					core.Xor(2, 2, 2), // mask loaded but not enabled yet
					core.Crget(3, core.CregFlags),
					core.Ori(3, 3, 0x0080),
					core.Crset(core.CregFlags, 3),
					core.Xor(4, 4, 4), // now vetoed, terminal
				})

				pass := m.CPU.XNum() == exception.Overload
				record("opcode_veto", n, m.CPU.XNum(), pass)

				Expect(n).To(Equal(6))
				Expect(m.CPU.XNum()).To(Equal(exception.Overload))
			})
		})

		Context("translation slot order", func() {
			It("lets the lowest matching slot veto even when a later one would allow", func() {
				n := runToHalt([]uint32{
					core.Ldi(1, 0x0011), // slot 0: low kilobyte, execute only
					core.Crset(core.CregMMUV, 1),
					core.Ldi(2, 0),
					core.Crset(core.CregMMUP, 2),
					core.Ldi(1, 0x001D), // slot 1: same window, read and write too
					core.Crset(core.CregMMUV+1, 1),
					core.Crset(core.CregMMUP+1, 2),
					core.Crget(3, core.CregFlags),
					core.Ori(3, 3, 0x0040),
					core.Crset(core.CregFlags, 3),
					core.Load(4, 0, 0x100), // slot 0 matches first and has no read bit
				})

				pass := m.CPU.XNum() == exception.Bus
				record("slot_order", n, m.CPU.XNum(), pass)

				Expect(n).To(Equal(10))
				Expect(m.CPU.XNum()).To(Equal(exception.Bus))
			})
		})
	})

	Describe("Context switching", func() {
		Context("switch twice", func() {
			It("restores both status words and both exception addresses", func() {
				prog := []uint32{
					core.Ldi(2, 0x40),
					core.Crset(core.CregXXAddr, 2),
					core.Ldi(3, 0x80),
					core.Crset(core.CregXAddr, 3),
					core.Switch(),
				}
				Expect(m.LoadProgram(prog, 0)).To(Succeed())
				m.Mem.SetWord(0x40, core.Switch())
				m.Mem.SetWord(0x80, core.Ldi(4, 7))
				n, err := m.Run(0)
				Expect(err).To(MatchError(machine.ErrDoubleFault))

				pass := m.CPU.Flags() == msw.Reset &&
					m.CPU.XAddr() == 0x80 && m.CPU.MirrorXAddr() == 0x40
				record("switch_twice", n, m.CPU.XNum(), pass)

				Expect(m.CPU.Reg(4)).To(Equal(uint64(7)))
				Expect(m.CPU.Flags()).To(Equal(msw.Reset))
				Expect(m.CPU.Mirror()).To(Equal(msw.Reset))
				Expect(m.CPU.XAddr()).To(Equal(uint64(0x80)))
				Expect(m.CPU.MirrorXAddr()).To(Equal(uint64(0x40)))
			})
		})

		Context("unknown opcode with a handler", func() {
			It("swaps context and records the faulting address in the mirror", func() {
				prog := []uint32{
					core.Crget(1, core.CregFlags),
					core.Ori(1, 1, 0x0002),
					core.Crset(core.CregFlags, 1),
					core.Ldi(2, 0x100),
					core.Crset(core.CregXXAddr, 2),
					0xC0000000,
				}
				Expect(m.LoadProgram(prog, 0)).To(Succeed())
				// the handler itself runs into word zero and wedges
				n, err := m.Run(0)
				Expect(err).To(MatchError(machine.ErrDoubleFault))

				pass := m.CPU.XNum() == exception.Invalid &&
					m.CPU.MirrorXAddr() == 0x14
				record("unknown_opcode", n, m.CPU.XNum(), pass)

				Expect(m.CPU.XNum()).To(Equal(exception.Invalid))
				Expect(m.CPU.MirrorXAddr()).To(Equal(uint64(0x14)))
				Expect(m.CPU.PC()).To(Equal(uint64(0x100)))
				Expect(m.CPU.Mirror().Xen()).To(BeTrue())
				Expect(m.CPU.Flags().Xen()).To(BeFalse())
			})
		})

		Context("fetch fault with exceptions masked", func() {
			It("wedges the machine permanently", func() {
				prog := []uint32{
					core.Crget(1, core.CregFlags),
					core.Ori(1, 1, 0x0040), // translation on, no slots mapped
					core.Crset(core.CregFlags, 1),
				}
				Expect(m.LoadProgram(prog, 0)).To(Succeed())
				n, err := m.Run(0)
				Expect(err).To(MatchError(machine.ErrDoubleFault))

				pass := m.CPU.XNum() == exception.Fetch && m.CPU.DoubleFault()
				record("terminal_fetch_fault", n, m.CPU.XNum(), pass)

				Expect(m.CPU.XNum()).To(Equal(exception.Fetch))

				// nothing moves afterwards
				pc := m.CPU.PC()
				n2, err2 := m.Run(5)
				Expect(err2).To(MatchError(machine.ErrDoubleFault))
				Expect(n2).To(BeZero())
				Expect(m.CPU.PC()).To(Equal(pc))
			})
		})
	})

	Describe("Requests", func() {
		Context("timer alarm", func() {
			It("lands in the handler with the acknowledge handshake done", func() {
				prog := []uint32{
					core.Crget(1, core.CregFlags),
					core.Ori(1, 1, 0x0006), // exceptions and timer requests
					core.Ldi(2, 0x100),
					core.Crset(core.CregXXAddr, 2),
					core.Crset(core.CregFlags, 1),
					core.Ldi(3, 0x03), // clear strobe plus alarm
					core.Crset(core.CregTimer, 3),
					core.Brsame(0, 0, 7), // spin
				}
				Expect(m.LoadProgram(prog, 0)).To(Succeed())
				m.Mem.SetWord(0x100, core.Crget(4, core.CregXNum))
				m.Mem.SetWord(0x104, core.Crset(core.CregSig, 4))
				m.Mem.SetWord(0x108, core.Brsame(0, 0, 0x42))

				for i := 0; i < 500 && m.CPU.Signal() == 0; i++ {
					m.Step()
				}

				pass := m.CPU.Signal() == uint64(exception.Timer) && !m.CPU.Ack()
				record("timer_alarm", 0, m.CPU.XNum(), pass)

				Expect(m.CPU.Signal()).To(Equal(uint64(exception.Timer)))
				Expect(m.CPU.XNum()).To(Equal(exception.Timer))
				Expect(m.CPU.Ack()).To(BeFalse())
			})
		})
	})

	Describe("Console device", func() {
		Context("program output", func() {
			It("emits bytes written to the data register", func() {
				n := runToHalt([]uint32{
					core.Ldi(1, 'H'),
					core.Out(1, 0, machine.ConData),
					core.Ldi(1, 'i'),
					core.Out(1, 0, machine.ConData),
					core.Ldi(1, '\n'),
					core.Out(1, 0, machine.ConData),
				})

				pass := conBuf.String() == "Hi\n"
				record("console_output", n, m.CPU.XNum(), pass)

				Expect(conBuf.String()).To(Equal("Hi\n"))
			})
		})

		Context("program input", func() {
			It("sees the pending bit and drains the queue", func() {
				m.Con.KeyPress('y')
				n := runToHalt([]uint32{
					core.In(1, 0, machine.ConStatus),
					core.In(2, 0, machine.ConData),
					core.In(3, 0, machine.ConStatus),
				})

				pass := m.CPU.Reg(2) == 'y'
				record("console_input", n, m.CPU.XNum(), pass)

				Expect(m.CPU.Reg(1)).To(Equal(uint64(3)))
				Expect(m.CPU.Reg(2)).To(Equal(uint64('y')))
				Expect(m.CPU.Reg(3)).To(Equal(uint64(1)))
			})
		})
	})

	Describe("Foreign table", func() {
		Context("register conventions", func() {
			It("reads the zero register as zero and traps the unaccepted forms", func() {
				m.CPU.SetReg(0, 99)
				n := runToHalt([]uint32{
					core.Crget(1, core.CregFlags),
					core.Ori(1, 1, 0x0200), // foreign decode on
					core.Crset(core.CregFlags, 1),
					core.EncodeIType(0x13, 5, 0, 0, 42), // addi x5, x0, 42
					core.EncodeRType(0x33, 6, 5, 5, 0, 0),
				})

				pass := m.CPU.Reg(5) == 42 && m.CPU.Reg(6) == 84
				record("foreign_table", n, m.CPU.XNum(), pass)

				Expect(n).To(Equal(5))
				Expect(m.CPU.Reg(5)).To(Equal(uint64(42)))
				Expect(m.CPU.Reg(6)).To(Equal(uint64(84)))
				// word zero is invalid in the foreign table too
				Expect(m.CPU.XNum()).To(Equal(exception.Invalid))
			})
		})
	})
})
