// Package ws exposes the engine to UI collaborators over websockets:
// a frame stream for live preview and a control channel that writes the
// configuration surface.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mauros/dxlight/internal/config"
	"github.com/mauros/dxlight/internal/engine"
)

const writeDeadline = 200 * time.Millisecond

// Server bridges websocket clients and the engine. It owns the mutable
// Config; the engine only ever sees immutable snapshots built from it.
type Server struct {
	mu      sync.RWMutex
	cfg     config.Config
	eng     *engine.Engine
	monW    int
	monH    int
	clients map[*websocket.Conn]bool
}

func NewServer(eng *engine.Engine, cfg config.Config, monW, monH int) *Server {
	return &Server{
		cfg:     cfg,
		eng:     eng,
		monW:    monW,
		monH:    monH,
		clients: map[*websocket.Conn]bool{},
	}
}

// Routes registers the server's handlers on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/frames", s.handleFrames)
	mux.HandleFunc("/ws/control", s.handleControl)
	mux.HandleFunc("/healthz", s.handleHealth)
}

// RunBroadcast pushes preview frames to all clients at the given interval
// until done is closed.
func (s *Server) RunBroadcast(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.broadcastFrame()
		}
	}
}

type previewFrame struct {
	T     int64    `json:"t"`
	State string   `json:"state"`
	FPS   float64  `json:"fps"`
	Leds  [][3]int `json:"leds"`
}

func (s *Server) broadcastFrame() {
	leds := s.eng.Leds()
	msg := previewFrame{
		T:     time.Now().UnixNano(),
		State: s.eng.State().String(),
		FPS:   s.eng.FPS(),
		Leds:  make([][3]int, len(leds)),
	}
	for i, c := range leds {
		msg.Leds[i] = [3]int{int(c.R), int(c.G), int(c.B)}
	}
	b, _ := json.Marshal(msg)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write preview frame")
		}
	}
}

func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// control is one incoming settings message. Pointer fields distinguish
// "absent" from zero values.
type control struct {
	Mode        *string `json:"mode"`
	Brightness  *int    `json:"brightness"`
	Smoothing   *int    `json:"smoothing"`
	FPS         *int    `json:"fps"`
	Edge        *int    `json:"edge"`
	Speed       *int    `json:"speed"`
	Mirror      *bool   `json:"mirror"`
	Aspect      *string `json:"aspect"`
	StaticColor *string `json:"static_color"`
	Command     string  `json:"command"` // "start" | "stop" | ""
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg control
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		s.apply(msg)
		s.sendConfig(conn)
	}
}

// apply folds a control message into the config, normalizes it, and swaps
// the resulting snapshot into the engine. Start/stop commands run after
// the settings so a combined message behaves predictably.
func (s *Server) apply(msg control) {
	s.mu.Lock()
	if msg.Mode != nil {
		s.cfg.Mode = engine.Mode(*msg.Mode)
		s.cfg.ApplyModePreset()
	}
	if msg.Brightness != nil {
		s.cfg.Brightness = *msg.Brightness
	}
	if msg.Smoothing != nil {
		s.cfg.Smoothing = *msg.Smoothing
	}
	if msg.FPS != nil {
		s.cfg.FPS = *msg.FPS
	}
	if msg.Edge != nil {
		s.cfg.Edge = *msg.Edge
	}
	if msg.Speed != nil {
		s.cfg.Speed = *msg.Speed
	}
	if msg.Mirror != nil {
		s.cfg.Mirror = *msg.Mirror
	}
	if msg.Aspect != nil {
		s.cfg.Aspect = *msg.Aspect
	}
	if msg.StaticColor != nil {
		s.cfg.StaticColor = *msg.StaticColor
	}
	s.cfg.Normalize()
	snap := s.cfg.Snapshot(s.monW, s.monH)
	s.mu.Unlock()

	s.eng.SetConfig(snap)

	switch msg.Command {
	case "start":
		if err := s.eng.Start(); err != nil {
			log.Warn().Err(err).Msg("start request failed")
		}
	case "stop":
		if err := s.eng.Stop(); err != nil {
			log.Warn().Err(err).Msg("stop request failed")
		}
	}
}

// Config returns a copy of the current settings.
func (s *Server) Config() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Server) sendConfig(conn *websocket.Conn) {
	s.mu.RLock()
	b, _ := json.Marshal(s.cfg)
	s.mu.RUnlock()
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"state": s.eng.State().String(),
		"fps":   s.eng.FPS(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
