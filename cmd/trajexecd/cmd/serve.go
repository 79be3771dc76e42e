package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/trajexec"
	"github.com/msto63/trajexec/internal/config"
	"github.com/msto63/trajexec/internal/controllermgr"
	"github.com/msto63/trajexec/internal/eventbus"
	"github.com/msto63/trajexec/internal/robot"
	"github.com/msto63/trajexec/internal/robotmodel"
	"github.com/msto63/trajexec/internal/statemon"
	"github.com/msto63/trajexec/internal/trajectory"
)

var (
	serveAddr      string
	serveModelPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the demo daemon",
	Long: `serve wires a YAML-described robot, an in-process controller
manager seeded with demo controllers, a joint state monitor, and a
websocket event bus into a trajectory execution manager, then exposes
a small HTTP control API:

  POST /v1/push     push a trajectory onto the sequential queue
  POST /v1/execute  start executing the queue
  POST /v1/stop     stop whatever is executing
  GET  /v1/status   last aggregate status and queue position
  GET  /ws          websocket event bus (send {"type":"publish","payload":"stop"})`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8090", "HTTP listen address")
	serveCmd.Flags().StringVar(&serveModelPath, "model", "configs/robot.yaml", "robot description file")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			fmt.Printf("warning: config not loaded (%v), using defaults\n", err)
		} else {
			cfg = loaded
		}
	}

	model, err := robotmodel.Load(serveModelPath)
	if err != nil {
		return fmt.Errorf("load robot model: %w", err)
	}

	monitor := statemon.NewChannel()
	seedState(monitor, model)

	manager := controllermgr.New()
	seedControllers(manager, model)

	topic := eventbus.New()
	wsServer := eventbus.NewWSServer(topic)

	mgr := trajexec.New(model, monitor, manager, topic, cfg)
	defer mgr.Shutdown()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/push", handlePush(mgr))
	mux.HandleFunc("/v1/execute", handleExecute(mgr))
	mux.HandleFunc("/v1/stop", handleStop(mgr))
	mux.HandleFunc("/v1/status", handleStatus(mgr))
	mux.Handle("/ws", wsServer)

	srv := &http.Server{Addr: serveAddr, Handler: mux}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	fmt.Printf("trajexecd listening on %s (model: %s)\n", serveAddr, serveModelPath)

	select {
	case <-sigCh:
		fmt.Println("\nshutting down")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

// seedControllers registers one demo controller per robot group, so the
// selector has something non-trivial to cover.
func seedControllers(manager *controllermgr.Manager, model robot.Model) {
	for _, group := range model.Groups() {
		joints, ok := model.GroupJoints(group)
		if !ok {
			continue
		}
		manager.Register(group+"_controller", joints, true)
	}
}

// seedState publishes a zero joint state so the start-state validator has
// a baseline to compare against before any real monitor is attached.
func seedState(monitor *statemon.Channel, model robot.Model) {
	positions := make(map[string]float64, len(model.JointNames()))
	velocities := make(map[string]float64, len(model.JointNames()))
	for _, name := range model.JointNames() {
		positions[name] = 0
		velocities[name] = 0
	}
	monitor.Publish(statemon.State{Positions: positions, Velocities: velocities, Timestamp: time.Now()})
}

type pushRequest struct {
	JointNames  []string  `json:"joint_names"`
	Positions   []float64 `json:"positions"`
	Controllers []string  `json:"controllers,omitempty"`
}

func handlePush(mgr *trajexec.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req pushRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		traj := trajectory.SingleWaypoint(req.JointNames, req.Positions)
		if err := mgr.Push(traj, req.Controllers); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func handleExecute(mgr *trajexec.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := mgr.Execute(nil, nil, true); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func handleStop(mgr *trajexec.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		mgr.StopExecution(true)
		w.WriteHeader(http.StatusAccepted)
	}
}

func handleStatus(mgr *trajexec.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contextIdx, waypointIdx := mgr.GetCurrentExpectedTrajectoryIndex()
		resp := struct {
			Status      string `json:"status"`
			ContextIdx  int    `json:"context_index"`
			WaypointIdx int    `json:"waypoint_index"`
		}{
			Status:      mgr.LastStatus().String(),
			ContextIdx:  contextIdx,
			WaypointIdx: waypointIdx,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
