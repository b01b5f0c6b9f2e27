//go:build rp2040

// cmd/escbridge/main.go
package main

import (
	"machine"
	"time"

	"escbridge-go/services/bridge"
	"escbridge-go/services/config"
	"escbridge-go/services/hal"
	"escbridge-go/services/indicator"
	"escbridge-go/services/input"
	"escbridge-go/services/modeselect"
	"escbridge-go/services/supervisor"
	"escbridge-go/services/watchdog"
)

// device selects the embedded configuration (-ldflags "-X main.device=...").
var device = config.DefaultDevice

func main() {
	cfg, err := config.Load(device)
	if err != nil {
		println("[main] config:", err.Error(), "- using defaults")
		cfg = config.Default()
	}
	tk := cfg.Timing.Ticks()

	board, err := hal.Open(cfg)
	if err != nil {
		println("[main] hal:", err.Error())
		rebootNow()
	}

	guard := watchdog.New(board.Watchdog, cfg.Timing.WatchdogTimeout(), board.LEDOnboard, board.LEDBlue, nil)
	if guard.BootCheck() {
		println("[main] restarted by watchdog")
	}
	if err := guard.Arm(); err != nil {
		println("[main] watchdog:", err.Error())
		rebootNow()
	}

	// ---------- Mode selection ----------

	btn := input.NewClassifier(board.Button, input.Thresholds{
		ShortMin: tk.ShortMin,
		ShortMax: tk.ShortMax,
		LongMin:  tk.LongMin,
	})
	confirm := &indicator.Player{
		LEDs: []hal.OutputPin{board.LEDBlue, board.LEDRed},
		Feed: guard.Feed,
	}
	sel := modeselect.New(board.Button, btn, indicator.NewBlinker(board.LEDBlue), confirm, guard.Feed, tk)
	mode := sel.Run(nil)
	println("[main] mode:", mode.String())

	// ---------- Transport ----------

	// No println past this point: the USB port now carries bridged traffic.
	buf := bridge.NewBuffer(cfg.BufferSize, cfg.RXStageSize)
	ser := bridge.NewSerialAdapter(buf, board.Serial)
	go bridge.NewUSBPump(buf, board.USB, board.LEDRed).Run()

	// ---------- Supervision ----------

	env := &supervisor.Env{
		Ticks:  tk,
		Serial: ser,
		Debug:  bridge.NewDebug(buf),
		Pulse:  board.Pulse,
		Servo:  board.Servo,
	}
	runner := supervisor.NewRunner(supervisor.ForMode(mode), env, btn,
		input.NewPowerSense(board.Power), guard.Feed, guard.Reset)
	runner.Run(nil)

	guard.Reset()
}

// rebootNow is the reset path for failures before the guardian exists.
func rebootNow() {
	_ = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 500})
	_ = machine.Watchdog.Start()
	for {
		time.Sleep(time.Second)
	}
}
