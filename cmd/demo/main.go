// Command demo simulates a network fetch layer producing segments and a
// playout consumer draining assembled frames, grounded on
// framesupplier/examples/demo/main.go's shape (log.SetFlags, signal
// handling, a producer goroutine, a consumer goroutine).
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	framebuffer "github.com/e7canasta/ndnrtc-framebuffer"
)

const (
	segmentsPerFrame = 4
	segmentSize      = 4096
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	buf, err := framebuffer.New(framebuffer.NewConfig(4, segmentsPerFrame*segmentSize))
	if err != nil {
		log.Fatalf("buffer init failed: %v", err)
	}
	defer buf.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go produceFrames(ctx, buf, 30)
	go consumeFrames(ctx, buf)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("shutting down...")
	cancel()
	time.Sleep(100 * time.Millisecond)
}

// produceFrames plays the role of the NDN fetch layer: book, reveal
// geometry, append segments.
func produceFrames(ctx context.Context, buf framebuffer.Buffer, fps int) {
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	var frameNo uint32
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frameNo++
			buf.BookSlot(frameNo)
			buf.MarkSlotAssembling(frameNo, segmentsPerFrame, segmentSize)
			for seg := 0; seg < segmentsPerFrame; seg++ {
				buf.AppendSegment(frameNo, seg, make([]byte, segmentSize))
			}
		}
	}
}

// consumeFrames plays the role of the decode/playout layer: wait for
// Ready, lock, read, unlock, free.
func consumeFrames(ctx context.Context, buf framebuffer.Buffer) {
	for {
		if ctx.Err() != nil {
			return
		}
		ev := buf.WaitForEvents(framebuffer.EventReady, 2*time.Second)
		if ev.Type != framebuffer.EventReady {
			continue
		}

		buf.LockSlot(ev.FrameNo)
		if frame, ok := buf.GetEncodedImage(ev.FrameNo); ok {
			slog.Info("frame ready", "frame_no", ev.FrameNo, "bytes", len(frame.Data), "trace_id", ev.TraceID)
		}
		buf.UnlockSlot(ev.FrameNo)
		buf.MarkSlotFree(ev.FrameNo)
	}
}
