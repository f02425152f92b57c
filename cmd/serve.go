package cmd

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/memsim/memsim/sim"
	"github.com/memsim/memsim/sim/trace"
	"github.com/memsim/memsim/sim/workload"
)

var serveAddr string // HTTP listen address

// clientMessage is a request from a websocket client.
type clientMessage struct {
	Type      string `json:"type"`                // "run"
	Algorithm string `json:"algorithm,omitempty"` // one of sim.ValidAlgorithms
}

// serverMessage is streamed back to the client.
type serverMessage struct {
	Type       string              `json:"type"` // "status", "record", "summary", "error"
	RunID      string              `json:"run_id,omitempty"`
	Algorithm  string              `json:"algorithm,omitempty"`
	Algorithms []string            `json:"algorithms,omitempty"`
	Frames     int                 `json:"frames,omitempty"`
	Record     *trace.Record       `json:"record,omitempty"`
	Summary    *trace.TraceSummary `json:"summary,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// server streams simulation runs over websockets and exports run metrics.
type server struct {
	procs    []*sim.Process
	mem      sim.MemoryConfig
	metrics  *runMetrics
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader
}

func newServer(procs []*sim.Process, mem sim.MemoryConfig, reg *prometheus.Registry) *server {
	return &server{
		procs:    procs,
		mem:      mem,
		metrics:  newRunMetrics(reg),
		gatherer: reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// handleWebSocket serves one client: each "run" message runs the loaded
// workload through the named algorithm and streams every record, then a summary.
func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Warnf("Error upgrading connection: %v", err)
		return
	}
	defer conn.Close()
	logrus.Info("Client connected")

	if err := conn.WriteJSON(serverMessage{Type: "status", Algorithms: sim.DefaultAlgorithms, Frames: s.mem.NumFrames}); err != nil {
		logrus.Warnf("Error sending status: %v", err)
		return
	}

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Warnf("Error reading message: %v", err)
			}
			break
		}
		logrus.Debugf("Received command: %s %s", msg.Type, msg.Algorithm)

		switch msg.Type {
		case "run":
			if err := s.streamRun(r.Context(), conn, msg.Algorithm); err != nil {
				logrus.Warnf("Error streaming run: %v", err)
				return
			}
		default:
			if err := conn.WriteJSON(serverMessage{Type: "error", Error: "unknown message type " + msg.Type}); err != nil {
				return
			}
		}
	}
	logrus.Info("Client disconnected")
}

func (s *server) streamRun(ctx context.Context, conn *websocket.Conn, name string) error {
	alg, err := sim.ParseAlgorithm(name)
	if err != nil {
		return conn.WriteJSON(serverMessage{Type: "error", Error: err.Error()})
	}
	var writeErr error
	res := runAlgorithm(ctx, s.procs, s.mem, alg, func(rec trace.Record) {
		if writeErr != nil {
			return
		}
		writeErr = conn.WriteJSON(serverMessage{Type: "record", Algorithm: alg.Name(), Record: &rec})
	})
	s.metrics.observe(res)
	if writeErr != nil {
		return writeErr
	}
	return conn.WriteJSON(serverMessage{Type: "summary", RunID: res.RunID, Algorithm: alg.Name(), Summary: res.Summary})
}

// serveCmd exposes runs over websocket and run metrics over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve <process-file>",
	Short: "Stream simulation runs over a websocket and export metrics",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", cfg.LogLevel)
		}
		logrus.SetLevel(level)

		procs, err := workload.LoadProcesses(context.Background(), args[0])
		if err != nil {
			logrus.Fatalf("Error: %v", err)
		}

		srv := newServer(procs, cfg.Memory, prometheus.NewRegistry())
		logrus.Infof("Server starting on http://localhost%s (websocket /ws, metrics /metrics)", serveAddr)
		if err := http.ListenAndServe(serveAddr, srv.routes()); err != nil {
			logrus.Fatalf("Server stopped: %v", err)
		}
	},
}

func init() {
	registerMemoryFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
	rootCmd.AddCommand(serveCmd)
}
