//go:build !rp2040 && !rp2350

package hal

import (
	"sync"
	"time"

	"escbridge-go/errcode"
	"escbridge-go/types"
)

// SimBoard keeps the concrete fakes so tests can drive and inspect them.
type SimBoard struct {
	Button     *SimPin
	Power      *SimPin
	LEDBlue    *SimPin
	LEDRed     *SimPin
	LEDOnboard *SimPin
	Serial     *SimSerial
	USB        *SimUSB
	Watchdog   *SimWatchdog
	Pulse      *SimPulse
	Servo      *SimServo
}

// NewSimBoard returns a board at rest: button released (high), power off.
func NewSimBoard() *SimBoard {
	return &SimBoard{
		Button:     NewSimPin(true),
		Power:      NewSimPin(false),
		LEDBlue:    NewSimPin(false),
		LEDRed:     NewSimPin(false),
		LEDOnboard: NewSimPin(false),
		Serial:     NewSimSerial(),
		USB:        &SimUSB{},
		Watchdog:   &SimWatchdog{},
		Pulse:      &SimPulse{},
		Servo:      &SimServo{},
	}
}

func (s *SimBoard) Board() *Board {
	return &Board{
		Button:     s.Button,
		Power:      s.Power,
		LEDBlue:    s.LEDBlue,
		LEDRed:     s.LEDRed,
		LEDOnboard: s.LEDOnboard,
		Serial:     s.Serial,
		USB:        s.USB,
		Watchdog:   s.Watchdog,
		Pulse:      s.Pulse,
		Servo:      s.Servo,
	}
}

// -----------------------------------------------------------------------------
// Pins
// -----------------------------------------------------------------------------

// SimPin is a settable level with an optional script of one-shot reads.
type SimPin struct {
	mu      sync.Mutex
	level   bool
	script  []bool
	changes int
}

func NewSimPin(level bool) *SimPin { return &SimPin{level: level} }

func (p *SimPin) Set(level bool) {
	p.mu.Lock()
	if level != p.level {
		p.changes++
	}
	p.level = level
	p.mu.Unlock()
}

// Get returns the next scripted sample if any, else the steady level.
func (p *SimPin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.script) > 0 {
		v := p.script[0]
		p.script = p.script[1:]
		return v
	}
	return p.level
}

// Glitch queues samples returned by the next Get calls before the steady level.
func (p *SimPin) Glitch(samples ...bool) {
	p.mu.Lock()
	p.script = append(p.script, samples...)
	p.mu.Unlock()
}

// Changes counts level transitions made through Set.
func (p *SimPin) Changes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.changes
}

// -----------------------------------------------------------------------------
// Hardware serial
// -----------------------------------------------------------------------------

// SimSerial records writes and reprogramming, and delivers received bytes
// either through the receive handler or through TryRead.
type SimSerial struct {
	mu      sync.Mutex
	rx      []byte
	tx      []byte
	handler func([]byte)

	Coding      types.LineCoding
	BaudCalls   int
	FormatCalls int
	// TxSpace limits how much each TryWrite accepts; 0 means unlimited.
	TxSpace int
}

func NewSimSerial() *SimSerial { return &SimSerial{Coding: types.DefaultLineCoding()} }

func (s *SimSerial) SetReceiveHandler(fn func([]byte)) {
	s.mu.Lock()
	s.handler = fn
	s.mu.Unlock()
}

// Inject simulates bytes arriving on the wire.
func (s *SimSerial) Inject(p []byte) {
	s.mu.Lock()
	h := s.handler
	if h == nil {
		s.rx = append(s.rx, p...)
	}
	s.mu.Unlock()
	if h != nil {
		h(p)
	}
}

func (s *SimSerial) TryRead(p []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(p, s.rx)
	s.rx = s.rx[n:]
	return n
}

func (s *SimSerial) TryWrite(p []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TxSpace > 0 && len(p) > s.TxSpace {
		p = p[:s.TxSpace]
	}
	s.tx = append(s.tx, p...)
	return len(p)
}

// Written returns and clears everything transmitted so far.
func (s *SimSerial) Written() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.tx
	s.tx = nil
	return out
}

func (s *SimSerial) SetBaudRate(br uint32) error {
	if br == 0 {
		return errcode.InvalidCoding
	}
	s.mu.Lock()
	s.Coding.BitRate = br
	s.BaudCalls++
	s.mu.Unlock()
	return nil
}

func (s *SimSerial) SetFormat(dataBits, stopBits uint8, parity types.Parity) error {
	if !ValidFormat(dataBits, stopBits, parity) {
		return errcode.InvalidCoding
	}
	s.mu.Lock()
	s.Coding.DataBits, s.Coding.StopBits, s.Coding.Parity = dataBits, stopBits, parity
	s.FormatCalls++
	s.mu.Unlock()
	return nil
}

// -----------------------------------------------------------------------------
// USB CDC
// -----------------------------------------------------------------------------

type SimUSB struct {
	mu       sync.Mutex
	conn     bool
	coding   types.LineCoding
	codingOK bool
	in       []byte // host -> device
	out      []byte // device -> host
	flushes  int
}

// Attach sets the host-side DTR state.
func (u *SimUSB) Attach(on bool) {
	u.mu.Lock()
	u.conn = on
	u.mu.Unlock()
}

// Request simulates a SET_LINE_CODING from the host.
func (u *SimUSB) Request(c types.LineCoding) {
	u.mu.Lock()
	u.coding, u.codingOK = c, true
	u.mu.Unlock()
}

// HostWrite queues bytes sent by the host.
func (u *SimUSB) HostWrite(p []byte) {
	u.mu.Lock()
	u.in = append(u.in, p...)
	u.mu.Unlock()
}

// HostRead returns and clears everything the device sent.
func (u *SimUSB) HostRead() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := u.out
	u.out = nil
	return out
}

func (u *SimUSB) Connected() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.conn
}

func (u *SimUSB) LineCoding() (types.LineCoding, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.coding, u.codingOK
}

func (u *SimUSB) Buffered() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.in)
}

func (u *SimUSB) Read(p []byte) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := copy(p, u.in)
	u.in = u.in[n:]
	return n
}

func (u *SimUSB) Write(p []byte) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.conn {
		return 0
	}
	u.out = append(u.out, p...)
	return len(p)
}

func (u *SimUSB) Flush() {
	u.mu.Lock()
	u.flushes++
	u.mu.Unlock()
}

// -----------------------------------------------------------------------------
// Watchdog
// -----------------------------------------------------------------------------

type SimWatchdog struct {
	mu      sync.Mutex
	Timeout time.Duration
	Started bool
	Updates int
	// Rebooted is what CausedReboot reports.
	Rebooted bool
}

func (w *SimWatchdog) Configure(timeout time.Duration) error {
	if timeout <= 0 {
		return errcode.InvalidParams
	}
	w.mu.Lock()
	w.Timeout = timeout
	w.mu.Unlock()
	return nil
}

func (w *SimWatchdog) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Timeout == 0 {
		return errcode.InvalidConfig
	}
	w.Started = true
	return nil
}

func (w *SimWatchdog) Update() {
	w.mu.Lock()
	w.Updates++
	w.mu.Unlock()
}

func (w *SimWatchdog) Feeds() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Updates
}

func (w *SimWatchdog) CausedReboot() bool { return w.Rebooted }

// -----------------------------------------------------------------------------
// RC service
// -----------------------------------------------------------------------------

// SimPulse models a receiver whose signal is either a steady pulse width or
// absent (0).
type SimPulse struct {
	mu     sync.Mutex
	signal uint32
	Inits  int
	Resets int
}

// Signal sets the width the receiver is currently emitting.
func (p *SimPulse) Signal(us uint32) {
	p.mu.Lock()
	p.signal = us
	p.mu.Unlock()
}

func (p *SimPulse) Init() error {
	p.mu.Lock()
	p.Inits++
	p.mu.Unlock()
	return nil
}

func (p *SimPulse) Reset() {
	p.mu.Lock()
	p.Resets++
	p.mu.Unlock()
}

func (p *SimPulse) PulseWidth() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signal
}

// SimServo records every actuator command.
type SimServo struct {
	mu      sync.Mutex
	Inits   int
	Starts  []uint8
	Writes  []uint8
	Stops   int
	Running bool
}

func (s *SimServo) Init() error {
	s.mu.Lock()
	s.Inits++
	s.mu.Unlock()
	return nil
}

func (s *SimServo) Start(angle uint8) {
	s.mu.Lock()
	s.Starts = append(s.Starts, angle)
	s.Running = true
	s.mu.Unlock()
}

func (s *SimServo) SetAngle(angle uint8) {
	s.mu.Lock()
	s.Writes = append(s.Writes, angle)
	s.mu.Unlock()
}

func (s *SimServo) Stop() {
	s.mu.Lock()
	s.Stops++
	s.Running = false
	s.mu.Unlock()
}
