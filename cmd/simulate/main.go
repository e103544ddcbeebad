// Command simulate plays a mobile client against a running liveness server:
// it streams a synthetic face track over the websocket and prints every
// status it receives.
package main

import (
	"ProjectLiveness/internal/entity"
	"ProjectLiveness/pkg/log"
	websocketPkg "ProjectLiveness/pkg/websocket"
	"context"
	"flag"
	"fmt"
	"os"
	"time"
)

func main() {
	endpoint := flag.String("url", "ws://127.0.0.1:3000/api/v1/liveness/ws", "liveness websocket endpoint")
	name := flag.String("scenario", "still", "still, jump, outside, far or flicker")
	interval := flag.Duration("interval", 33*time.Millisecond, "time between frames")
	duration := flag.Duration("duration", 6*time.Second, "how long to stream frames")
	screenW := flag.Float64("screen-width", 400, "screen width in points")
	screenH := flag.Float64("screen-height", 800, "screen height in points")
	policy := flag.String("policy", "", "snapshot or debounce (server default when empty)")
	lang := flag.String("lang", "", "preferred language, e.g. pt-BR")
	flag.Parse()

	logger := log.NewLogger()

	play, ok := scenarios[*name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown scenario %q\n", *name)
		os.Exit(2)
	}

	url, err := websocketPkg.SessionURL(*endpoint, websocketPkg.SessionQuery{
		ScreenWidth:  *screenW,
		ScreenHeight: *screenH,
		Policy:       entity.PolicyKind(*policy),
		Lang:         *lang,
	})
	if err != nil {
		logger.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := websocketPkg.Dial(ctx, logger, url, nil)
	cancel()
	if err != nil {
		logger.Fatal(err)
	}
	defer client.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			st, err := client.ReadStatus()
			if err != nil {
				if !websocketPkg.IsNormalClose(err) {
					logger.Warnf("Stream ended: %v", err)
				}
				return
			}
			fmt.Printf("%6dms seq=%-4d %-10s %-12s %3.0f%% %s\n",
				st.TimestampMs, st.Seq, st.Phase, st.Feedback, st.Progress*100, st.Message)
			if st.Attestation != "" {
				fmt.Printf("attestation: %s\n", st.Attestation)
			}
		}
	}()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	// frames carry ideal-clock timestamps, not wall time
	for _, obs := range sequence(play, *interval, *duration) {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		if err := client.SendFrame(obs); err != nil {
			logger.Warnf("Failed to send frame: %v", err)
			break
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
