package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/sirupsen/logrus"

	"sc64/machine"
)

/*
group all front panel related functions here

requested functionality:
	- show the machine console output, feed typed keys back in
	- refresh the register and status views once a second
	- lamp row for the GPIO output latch
	- keybindings:
	  Ctrl-C - quit
	  Ctrl-S - single step one instruction
	  Ctrl-R - run / halt toggle
	  Ctrl-D - dump the instruction trace to the status view
*/

type panel struct {
	m   *machine.Machine
	g   *gocui.Gui
	log *logrus.Logger

	// the run goroutine and the gui handlers share the machine
	mu      sync.Mutex
	running bool
}

func newPanel(l *logrus.Logger) *panel {
	return &panel{log: l}
}

// start builds the machine and points its console at the gui. Runs
// through Update so the views exist already.
func (p *panel) start(g *gocui.Gui) error {
	p.g = g

	statusView, err := g.View("status")
	if err != nil {
		return err
	}
	statusView.Clear()

	consoleView, err := g.View("console")
	if err != nil {
		return err
	}
	consoleView.Clear()
	consoleView.Editable = true
	consoleView.Editor = gocui.EditorFunc(
		func(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
			p.keystroke(key, ch)
		})
	if _, err := g.SetCurrentView("console"); err != nil {
		return err
	}

	fmt.Fprintf(statusView, "Starting SC64 front panel..\n")

	opts := []machine.Option{
		machine.WithMemSize(*memFlag),
		machine.WithLogger(p.log),
		machine.WithConsole(&viewWriter{g: g, name: "console"}),
	}
	if *traceFlag {
		opts = append(opts, machine.WithTrace())
	}
	p.m = machine.New(opts...)

	if *imageFlag != "" {
		if err := p.m.LoadImageFile(*imageFlag, *offsetFlag); err != nil {
			fmt.Fprintf(statusView, "image load failed: %v\n", err)
			return nil
		}
		fmt.Fprintf(statusView, "loaded %s at %#x, Ctrl-R runs it\n",
			*imageFlag, *offsetFlag)
	}

	p.updateRegisters()
	return nil
}

// keystroke feeds typed characters to the console device.
func (p *panel) keystroke(key gocui.Key, ch rune) {
	if p.m == nil {
		return
	}
	if ch != 0 {
		p.m.Con.KeyPress(byte(ch))
		return
	}
	switch key {
	case gocui.KeySpace:
		p.m.Con.KeyPress(' ')
	case gocui.KeyEnter:
		p.m.Con.KeyPress('\r')
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		p.m.Con.KeyPress(8)
	}
}

func (p *panel) keybindings(g *gocui.Gui) error {
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyCtrlS, gocui.ModNone, p.step); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyCtrlR, gocui.ModNone, p.toggleRun); err != nil {
		return err
	}
	return g.SetKeybinding("", gocui.KeyCtrlD, gocui.ModNone, p.dumpTrace)
}

// step executes a single instruction while halted.
func (p *panel) step(g *gocui.Gui, v *gocui.View) error {
	if line := p.stepOnce(); line != "" {
		p.status("step: %s", line)
	}
	return nil
}

// stepOnce advances the halted machine one instruction and renders
// the status line while still holding the lock. Empty when the
// machine is running or not built yet.
func (p *panel) stepOnce() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.m == nil || p.running {
		return ""
	}
	p.m.StepInstruction()
	return p.m.CPU.StatusLine()
}

// toggleRun starts or halts continuous execution.
func (p *panel) toggleRun(g *gocui.Gui, v *gocui.View) error {
	if p.m == nil {
		return nil
	}
	p.mu.Lock()
	p.running = !p.running
	run := p.running
	p.mu.Unlock()
	if run {
		p.status("running")
		go p.runLoop()
	} else {
		p.status("halted: %s", p.m.CPU.StatusLine())
	}
	return nil
}

// runLoop steps the machine in batches until halted or wedged.
func (p *panel) runLoop() {
	for {
		p.mu.Lock()
		if !p.running {
			p.mu.Unlock()
			return
		}
		for i := 0; i < 1000; i++ {
			p.m.Step()
		}
		wedged := p.m.CPU.DoubleFault()
		if wedged {
			p.running = false
		}
		p.mu.Unlock()
		if wedged {
			p.status("machine wedged, Ctrl-D for the trace")
			return
		}
		time.Sleep(time.Millisecond)
	}
}

func (p *panel) dumpTrace(g *gocui.Gui, v *gocui.View) error {
	if p.m == nil {
		return nil
	}
	p.mu.Lock()
	lines := p.m.CPU.TraceLines()
	p.mu.Unlock()
	if len(lines) == 0 {
		p.status("trace is empty, run with -trace")
		return nil
	}
	for _, line := range lines {
		p.status("%s", line)
	}
	return nil
}

// update registers display
// has to be run in go routine -> gocui allows updating the view only through Update function
func (p *panel) updateRegisters() {
	ticker := time.NewTicker(time.Second * 1)

	go func() {
		i := 0
		for range ticker.C {
			p.g.Update(func(g *gocui.Gui) error {
				v, err := g.View("registers")
				if err != nil {
					return err
				}
				v.Clear()
				p.mu.Lock()
				fmt.Fprintf(v, "%s\n", p.m.CPU.DumpRegisters())
				fmt.Fprintf(v, "%s  gpio %s <t : 0x%x>",
					p.m.CPU.StatusLine(), lamps(p.m.CPU.GPIOOut()), i)
				p.mu.Unlock()
				return nil
			})
			i++
		}
	}()
}

// status appends one line to the status view.
func (p *panel) status(format string, args ...interface{}) {
	p.g.Update(func(g *gocui.Gui) error {
		v, err := g.View("status")
		if err != nil {
			return err
		}
		fmt.Fprintf(v, format+"\n", args...)
		return nil
	})
}

// lamps renders the low byte of the GPIO latch as a lamp row.
func lamps(v uint64) string {
	var b strings.Builder
	for bit := 7; bit >= 0; bit-- {
		if v>>uint(bit)&1 != 0 {
			b.WriteByte('*')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// viewWriter lets the machine console print into a gocui view. gocui
// allows view updates only through Update, so every write hops onto
// the gui loop.
type viewWriter struct {
	g    *gocui.Gui
	name string
}

func (w *viewWriter) Write(p []byte) (int, error) {
	s := string(p)
	w.g.Update(func(g *gocui.Gui) error {
		v, err := g.View(w.name)
		if err != nil {
			return err
		}
		fmt.Fprintf(v, "%s", s)
		return nil
	})
	return len(p), nil
}
