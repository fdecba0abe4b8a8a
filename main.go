package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jroimartin/gocui"
	"github.com/sirupsen/logrus"

	"sc64/logger"
	"sc64/machine"
)

var (
	imageFlag  = flag.String("image", "", "raw binary to load at the load offset")
	offsetFlag = flag.Uint64("offset", 0, "load offset, also the initial pc")
	memFlag    = flag.Int("mem", 1<<20, "RAM size in bytes")
	logFlag    = flag.String("log", "", "log file path, empty logs to stdout")
	debugFlag  = flag.Bool("debug", false, "debug level logging")
	traceFlag  = flag.Bool("trace", false, "keep the post-mortem instruction trace")
	headless   = flag.Bool("headless", false, "run without the front panel")
	limitFlag  = flag.Int("limit", 0, "instruction limit for headless runs, 0 for the default")
)

func main() {
	flag.Parse()
	l := logger.New(*logFlag, *debugFlag)

	if *headless {
		runHeadless(l)
		return
	}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Panicln("Couldn't create gui!")
	}
	defer g.Close()

	g.SetManagerFunc(layout)

	p := newPanel(l)
	if err := p.keybindings(g); err != nil {
		log.Panicln(err)
	}

	// start emulation
	g.Update(p.start)

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
}

// runHeadless executes the image with the console on stdout, no gui.
func runHeadless(l *logrus.Logger) {
	opts := []machine.Option{
		machine.WithMemSize(*memFlag),
		machine.WithLogger(l),
		machine.WithConsole(os.Stdout),
	}
	if *traceFlag {
		opts = append(opts, machine.WithTrace())
	}
	m := machine.New(opts...)

	if *imageFlag == "" {
		l.Fatal("headless run needs an -image")
	}
	if err := m.LoadImageFile(*imageFlag, *offsetFlag); err != nil {
		l.Fatal(err)
	}

	n, err := m.Run(*limitFlag)
	if err != nil {
		for _, line := range m.CPU.TraceLines() {
			fmt.Println(line)
		}
		l.WithField("instructions", n).Fatal(err)
	}
	fmt.Printf("done after %d instructions\n", n)
}

// gocui layout
func layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// up -> machine console
	if v, err := g.SetView("console", 0, 0, maxX-1, maxY-18); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Console"
		v.Autoscroll = true
		v.Wrap = true
	}

	// middle -> register values
	if v, err := g.SetView("registers", 0, maxY-17, maxX-1, maxY-11); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Registers"
	}
	// down -> status
	if v, err := g.SetView("status", 0, maxY-10, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Status"
		v.Autoscroll = true
	}
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
