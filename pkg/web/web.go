package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/servorig/go-controller/pkg/eventlog"
	"github.com/servorig/go-controller/pkg/hardware"
	"github.com/servorig/go-controller/pkg/rig"
)

// How often the websocket pushes a fresh state snapshot.
const pushInterval = 100 * time.Millisecond

// Server is the browser dashboard: live state over JSON and a
// websocket, plus a control endpoint mirroring the pad controls.
type Server struct {
	hw  hardware.Interface
	rig *rig.Rig
	log *eventlog.Logger

	upgrader websocket.Upgrader
}

func New(hw hardware.Interface, r *rig.Rig, log *eventlog.Logger) *Server {
	return &Server{
		hw:  hw,
		rig: r,
		log: log,
		upgrader: websocket.Upgrader{
			// The dashboard is served on the robot's own network.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/data", s.handleData)
	r.Get("/log", s.handleLog)
	r.Get("/ws", s.handleWS)
	r.Post("/control", s.handleControl)
	return r
}

// Serve runs the dashboard until the context is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Routes()}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Println("Dashboard listening on", addr)
		err := srv.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type servoState struct {
	Position int  `json:"position"`
	Hold     bool `json:"hold"`
}

type statusState struct {
	PCA        bool    `json:"pca"`
	MPU        bool    `json:"mpu"`
	Controller bool    `json:"controller"`
	Bus        string  `json:"bus"`
	Speed      float64 `json:"speed"`
	Locked     bool    `json:"locked"`
}

type statePayload struct {
	Servos map[string]servoState `json:"servos"`
	MPU    interface{}           `json:"mpu"`
	Status statusState           `json:"status"`
}

func (s *Server) statePayload() statePayload {
	snap := s.rig.Snapshot()
	avail := s.hw.Available()
	servos := make(map[string]servoState, rig.NumChannels)
	for n := 0; n < rig.NumChannels; n++ {
		servos[strconv.Itoa(n)] = servoState{
			Position: snap.Positions[n],
			Hold:     snap.Hold[n],
		}
	}
	return statePayload{
		Servos: servos,
		MPU:    s.hw.CurrentMotion(),
		Status: statusState{
			PCA:        avail.PWM,
			MPU:        avail.IMU,
			Controller: avail.Controller,
			Bus:        avail.Bus,
			Speed:      snap.Speed,
			Locked:     snap.Locked,
		},
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.statePayload())
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	events := s.log.Snapshot()
	if events == nil {
		events = []eventlog.Event{}
	}
	writeJSON(w, events)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Println("Websocket upgrade failed:", err)
		return
	}
	defer conn.Close()

	// Drain (and discard) client messages so pings get answered.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(s.statePayload()); err != nil {
				return
			}
		}
	}
}

// controlRequest carries one dashboard action.  Absent fields are
// ignored so a request can carry just the control being poked.
type controlRequest struct {
	Servo *struct {
		Channel int `json:"channel"`
		Angle   int `json:"angle"`
	} `json:"servo"`
	All  *int `json:"all"`
	Hold *struct {
		Channel int  `json:"channel"`
		State   bool `json:"state"`
	} `json:"hold"`
	Lock  *bool    `json:"lock"`
	Speed *float64 `json:"speed"`
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
		return
	}
	if req.Servo != nil {
		s.rig.MoveServoToAngle(req.Servo.Channel, req.Servo.Angle)
		s.log.Append("web-servo", map[string]interface{}{
			"channel": req.Servo.Channel, "angle": req.Servo.Angle,
		})
	}
	if req.All != nil {
		s.rig.MoveAll(*req.All)
		s.log.Append("web-all", map[string]interface{}{"angle": *req.All})
	}
	if req.Hold != nil {
		s.rig.SetHold(req.Hold.Channel, req.Hold.State)
		s.log.Append("web-hold", map[string]interface{}{
			"channel": req.Hold.Channel, "state": req.Hold.State,
		})
	}
	if req.Lock != nil {
		s.rig.SetLock(*req.Lock)
		s.log.Append("web-lock", map[string]interface{}{"locked": *req.Lock})
	}
	if req.Speed != nil {
		s.rig.SetSpeed(*req.Speed)
		s.log.Append("web-speed", map[string]interface{}{"speed": *req.Speed})
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Println("Failed to write response:", err)
	}
}
