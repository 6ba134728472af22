package main

import (
	"time"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	// Periodic heartbeat in the serial timestamp layout.
	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	for t := range tick.C {
		println(t.Format("2006/01/02 15:04:05"), "Heartbeat")
	}
}
