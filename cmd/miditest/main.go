package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

func main() {
	defer midi.CloseDriver()

	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		monitor(arg(2))
	case "clock":
		sendClock(arg(2), arg(3))
	case "notes":
		sendNotes(arg(2))
	default:
		usage()
	}
}

func arg(n int) string {
	if len(os.Args) > n {
		return os.Args[n]
	}
	return ""
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                 - List all MIDI ports")
	fmt.Println("  monitor <in>         - Print incoming messages from a port")
	fmt.Println("  clock <out> [bpm]    - Send Start + 24ppqn clock (Ctrl+C stops)")
	fmt.Println("  notes <out>          - Hold a C major triad for 4 seconds")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range midi.GetInPorts() {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range midi.GetOutPorts() {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

func findIn(name string) drivers.In {
	for _, p := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			return p
		}
	}
	return nil
}

func findOut(name string) drivers.Out {
	for _, p := range midi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			return p
		}
	}
	return nil
}

func monitor(name string) {
	if name == "" {
		fmt.Println("usage: miditest monitor <port>")
		return
	}
	in := findIn(name)
	if in == nil {
		fmt.Printf("no input port matching %q\n", name)
		return
	}
	fmt.Printf("Monitoring %s (Ctrl+C to stop)\n", in.String())

	clocks := 0
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		raw := []byte(msg)
		if len(raw) > 0 && raw[0] == 0xF8 {
			clocks++
			if clocks%24 == 0 {
				fmt.Printf("[%6dms] clock x24 (quarter note)\n", timestampms)
			}
			return
		}
		fmt.Printf("[%6dms] % X\n", timestampms, raw)
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer stop()

	waitForInterrupt()
}

func sendClock(name, bpmArg string) {
	if name == "" {
		fmt.Println("usage: miditest clock <port> [bpm]")
		return
	}
	out := findOut(name)
	if out == nil {
		fmt.Printf("no output port matching %q\n", name)
		return
	}
	bpm := 120
	if n, err := strconv.Atoi(bpmArg); err == nil && n >= 40 && n <= 240 {
		bpm = n
	}

	send, err := midi.SendTo(out)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Sending Start + clock at %d bpm to %s (Ctrl+C stops)\n", bpm, out.String())
	send(midi.Start())

	// 24 clocks per quarter note
	interval := time.Duration(float64(time.Minute) / float64(bpm) / 24.0)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	for {
		select {
		case <-ticker.C:
			send(midi.TimingClock())
		case <-sig:
			send(midi.Stop())
			fmt.Println("\nStop sent")
			return
		}
	}
}

func sendNotes(name string) {
	if name == "" {
		fmt.Println("usage: miditest notes <port>")
		return
	}
	out := findOut(name)
	if out == nil {
		fmt.Printf("no output port matching %q\n", name)
		return
	}
	send, err := midi.SendTo(out)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	triad := []uint8{60, 64, 67}
	fmt.Printf("Holding C major triad on %s for 4 seconds\n", out.String())
	for _, n := range triad {
		send(midi.NoteOn(0, n, 100))
	}
	time.Sleep(4 * time.Second)
	for _, n := range triad {
		send(midi.NoteOff(0, n))
	}
	fmt.Println("Done!")
}

func waitForInterrupt() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
	fmt.Println()
}
