// Package ws streams live soak-run frames to spectators. It is a
// broadcast-only observability channel; spectators never influence the
// run.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Frame is one turn's worth of spectator state.
type Frame struct {
	RunID string `json:"run_id"`
	Depth int    `json:"depth"`
	Turn  uint64 `json:"turn"`

	X  int `json:"x"`
	Y  int `json:"y"`
	HP int `json:"hp"`

	State      string `json:"state"`
	Action     string `json:"action"`
	StopReason string `json:"stop_reason,omitempty"`
}

type subscriber struct {
	out chan []byte
}

// Observer accepts websocket spectators and fans frames out to them.
// Slow consumers get dropped rather than stalling the run.
type Observer struct {
	log      *log.Logger
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewObserver(logger *log.Logger) *Observer {
	return &Observer{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		subs: make(map[*subscriber]struct{}),
	}
}

func (o *Observer) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := o.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sub := &subscriber{out: make(chan []byte, 64)}
		o.mu.Lock()
		o.subs[sub] = struct{}{}
		n := len(o.subs)
		o.mu.Unlock()
		if o.log != nil {
			o.log.Printf("observer connected (%d total)", n)
		}
		defer o.unsubscribe(sub)

		done := make(chan struct{})

		// Writer loop.
		go func() {
			defer close(done)
			for b := range sub.out {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}()

		// Reader loop exists only to notice disconnects; inbound
		// payloads are discarded.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		// Closing the subscriber channel releases the writer loop.
		o.unsubscribe(sub)
		<-done
	}
}

func (o *Observer) unsubscribe(sub *subscriber) {
	o.mu.Lock()
	if _, ok := o.subs[sub]; ok {
		delete(o.subs, sub)
		close(sub.out)
	}
	o.mu.Unlock()
}

// Broadcast marshals once and fans out. Subscribers whose buffers are
// full are disconnected.
func (o *Observer) Broadcast(f Frame) {
	b, err := json.Marshal(f)
	if err != nil {
		return
	}

	o.mu.Lock()
	var dead []*subscriber
	for sub := range o.subs {
		select {
		case sub.out <- b:
		default:
			dead = append(dead, sub)
		}
	}
	for _, sub := range dead {
		delete(o.subs, sub)
		close(sub.out)
	}
	o.mu.Unlock()
}

func (o *Observer) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}
