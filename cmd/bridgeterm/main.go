// cmd/bridgeterm/main.go
//
// bridgeterm opens the bridge's USB serial port with a chosen line coding so
// the firmware re-programs its UART, then prints what the board sends. In the
// test modes that is the diagnostic text; with -keys it also drives the servo.
package main

import (
	"bufio"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/goburrow/serial"
	"github.com/golang/glog"
)

func main() {
	profilePath := flag.String("profile", "", "YAML profile (port, line coding, keys)")
	port := flag.String("port", "", "override the profile's port")
	keys := flag.String("keys", "", "override the profile's servo keys")
	dur := flag.Duration("for", 0, "stop after this long (0 = until interrupted)")
	flag.Parse()
	defer glog.Flush()

	prof, err := LoadProfile(*profilePath)
	if err != nil {
		glog.Exitf("profile: %v", err)
	}
	if *port != "" {
		prof.Port = *port
	}
	if *keys != "" {
		prof.Keys = *keys
	}

	p, err := serial.Open(prof.SerialConfig())
	if err != nil {
		glog.Exitf("open %s: %v", prof.Port, err)
	}
	defer p.Close()
	glog.Infof("opened %s coding=%+v", prof.Port, prof.Coding())

	stop := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		if *dur > 0 {
			select {
			case <-sig:
			case <-time.After(*dur):
			}
		} else {
			<-sig
		}
		close(stop)
	}()

	if prof.Keys != "" {
		go sendKeys(p, prof.Keys, time.Duration(prof.KeyGapMS)*time.Millisecond)
	}

	lines := make(chan string)
	go readLines(p, lines)
	for {
		select {
		case <-stop:
			glog.Info("stop requested")
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			glog.Info(l)
		}
	}
}

func sendKeys(w io.Writer, keys string, gap time.Duration) {
	for i := 0; i < len(keys); i++ {
		if _, err := w.Write([]byte{keys[i]}); err != nil {
			glog.Errorf("write key %q: %v", keys[i], err)
			return
		}
		glog.V(2).Infof("sent %q", keys[i])
		time.Sleep(gap)
	}
}

// readLines forwards complete lines until the port fails. Read timeouts are
// expected while the board is quiet and are not errors.
func readLines(r io.Reader, out chan<- string) {
	defer close(out)
	br := bufio.NewReader(r)
	var pending []byte
	for {
		b, err := br.ReadBytes('\n')
		pending = append(pending, b...)
		if err == nil {
			out <- string(pending[:len(pending)-1])
			pending = pending[:0]
			continue
		}
		if errors.Is(err, serial.ErrTimeout) {
			continue
		}
		if len(pending) > 0 {
			out <- string(pending)
		}
		if !errors.Is(err, io.EOF) {
			glog.Errorf("read: %v", err)
		}
		return
	}
}
