// Command armwatch tails the telemetry stream of a running armctl dashboard
// and prints decoded events.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/marcusholm/go-armctl/internal/log"
	"github.com/marcusholm/go-armctl/pkg/motion"
	"github.com/marcusholm/go-armctl/pkg/telemetry"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "Dashboard address to connect to")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	if err := run(*addr); err != nil {
		log.Error("armwatch failed", "err", err)
		os.Exit(1)
	}
}

func run(addr string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws/state"}
	log.Info("connecting to dashboard", "url", u.String())

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}
	defer conn.Close()

	// Close the connection on signal so the read loop unblocks.
	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		ev, err := telemetry.ParseEvent(data)
		if err != nil {
			log.Warn("skipping malformed event", "err", err)
			continue
		}
		printEvent(ev)
	}
}

func printEvent(ev *telemetry.Event) {
	ts := time.UnixMilli(ev.Timestamp).Format("15:04:05.000")

	switch ev.Type {
	case telemetry.TypeState:
		var snap motion.Snapshot
		if err := ev.ParseData(&snap); err != nil {
			log.Warn("bad state event", "err", err)
			return
		}
		fmt.Printf("%s tick=%d t=%.2fs target=[%.3f %.3f %.3f] |F|=%.2fN\n",
			ts, snap.Tick, snap.Elapsed,
			snap.Target.Position[0], snap.Target.Position[1], snap.Target.Position[2],
			snap.Wrench.ForceNorm())

	case telemetry.TypeAction:
		var a telemetry.ActionData
		if err := ev.ParseData(&a); err != nil {
			log.Warn("bad action event", "err", err)
			return
		}
		fmt.Printf("%s action: %s\n", ts, a.Name)

	case telemetry.TypeCollision:
		var c telemetry.CollisionData
		if err := ev.ParseData(&c); err != nil {
			log.Warn("bad collision event", "err", err)
			return
		}
		fmt.Printf("%s COLLISION |F|=%.2fN\n", ts, c.ForceNorm)

	case telemetry.TypeFault:
		fmt.Printf("%s FAULT\n", ts)

	default:
		fmt.Printf("%s %s\n", ts, ev.Type)
	}
}
