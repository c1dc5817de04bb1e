package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"eucalypso/config"
	"eucalypso/debug"
	"eucalypso/engine"
	"eucalypso/midi"
	"eucalypso/tui"
)

// host owns the engine and serializes access to it. Three callers arrive
// concurrently: the MIDI input listener, the frame-clock goroutine and the
// TUI; the engine itself is single-threaded so everything funnels through
// the mutex.
type host struct {
	mu   sync.Mutex
	eng  *engine.Engine
	send func([]byte) error

	sampleRate int
	blockSize  int

	updates    chan struct{}
	lastNotify atomic.Int64 // unix nanos of the last TUI wake
}

func newHost(eng *engine.Engine, sampleRate, blockSize int) *host {
	return &host{
		eng:        eng,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		updates:    make(chan struct{}, 1),
	}
}

// drain sends everything the engine emitted out the MIDI port
func (h *host) drain(buf *midi.Buffer) {
	if h.send == nil {
		return
	}
	for _, ev := range buf.Events() {
		if err := h.send(ev.Bytes()); err != nil {
			debug.Log("midi", "send failed: %v", err)
		}
	}
}

// handleMIDI runs on the input listener goroutine, once per message
func (h *host) handleMIDI(msg []byte) {
	h.mu.Lock()
	buf := midi.NewBuffer(128)
	h.eng.ProcessMIDI(msg, buf)
	h.drain(buf)
	h.mu.Unlock()
	h.notify()
}

// tick runs on the frame-clock goroutine, once per audio-sized block
func (h *host) tick() {
	h.mu.Lock()
	buf := midi.NewBuffer(128)
	h.eng.Tick(h.blockSize, h.sampleRate, buf)
	emitted := buf.Len() > 0
	h.drain(buf)
	h.mu.Unlock()
	if emitted {
		h.notify()
	}
	debug.LogEvery(500, "clock", "tick block=%d", h.blockSize)
}

// notify wakes the TUI, throttled so block-rate ticks don't flood it
func (h *host) notify() {
	now := time.Now().UnixNano()
	last := h.lastNotify.Load()
	if now-last < int64(50*time.Millisecond) || !h.lastNotify.CompareAndSwap(last, now) {
		return
	}
	select {
	case h.updates <- struct{}{}:
	default:
	}
}

func (h *host) Snapshot() engine.Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.eng.Snapshot()
}

func (h *host) SetParam(key, val string) {
	h.mu.Lock()
	h.eng.SetParam(key, val)
	h.mu.Unlock()
	h.notify()
}

func (h *host) GetParam(key string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.eng.GetParam(key)
}

// TogglePlay injects transport bytes as if they arrived on the wire
func (h *host) TogglePlay() {
	running := h.Snapshot().Running
	if running {
		h.handleMIDI([]byte{midi.Stop})
	} else {
		h.handleMIDI([]byte{midi.Start})
	}
}

func (h *host) Updates() <-chan struct{} {
	return h.updates
}

func main() {
	listPorts := flag.Bool("list", false, "list MIDI ports and exit")
	inName := flag.String("in", "", "MIDI input port (substring match)")
	outName := flag.String("out", "", "MIDI output port (substring match)")
	debugLog := flag.Bool("debug", false, "log to ~/.config/eucalypso/debug.log")
	flag.Parse()

	if *listPorts {
		fmt.Println("=== MIDI Input Ports ===")
		for i, name := range midi.InPortNames() {
			fmt.Printf("  %d: %s\n", i, name)
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, name := range midi.OutPortNames() {
			fmt.Printf("  %d: %s\n", i, name)
		}
		midi.CloseDriver()
		return
	}

	if *debugLog {
		if err := debug.Enable(); err != nil {
			fmt.Printf("debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}
	if *inName != "" {
		cfg.MIDI.InputPort = *inName
	}
	if *outName != "" {
		cfg.MIDI.OutputPort = *outName
	}

	eng := engine.New()
	eng.SetLogger(debug.Logger("engine"))
	for key, val := range cfg.Engine.Params {
		eng.SetParam(key, val)
	}
	if cfg.Engine.State != "" {
		eng.SetParam("state", cfg.Engine.State)
	}

	h := newHost(eng, cfg.Engine.SampleRate, cfg.Engine.BlockSize)
	defer midi.CloseDriver()

	if cfg.MIDI.OutputPort != "" {
		port, err := midi.FindOutPort(cfg.MIDI.OutputPort)
		if err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
		send, err := midi.OpenSender(port)
		if err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
		h.send = send
		debug.Log("midi", "output: %s", port.String())
	} else {
		fmt.Println("no output port configured; running silent (-out to set one)")
	}

	if cfg.MIDI.InputPort != "" {
		port, err := midi.FindInPort(cfg.MIDI.InputPort)
		if err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
		stop, err := midi.Listen(port, h.handleMIDI)
		if err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
		defer stop()
		debug.Log("midi", "input: %s", port.String())
	} else {
		fmt.Println("no input port configured; transport keys only (-in to set one)")
	}

	// Frame clock: one tick per block-sized slice of wall time
	done := make(chan struct{})
	go func() {
		interval := time.Duration(h.blockSize) * time.Second / time.Duration(h.sampleRate)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				h.tick()
			}
		}
	}()

	p := tea.NewProgram(tui.NewModel(h), tea.WithAltScreen())
	_, runErr := p.Run()
	close(done)

	// Park the transport and persist the full engine state for next launch
	h.handleMIDI([]byte{midi.Stop})
	if state, ok := h.GetParam("state"); ok {
		cfg.Engine.State = state
		if err := cfg.Save(); err != nil {
			fmt.Printf("config save: %v\n", err)
		}
	}

	if runErr != nil {
		fmt.Printf("Error: %v\n", runErr)
		os.Exit(1)
	}
}
