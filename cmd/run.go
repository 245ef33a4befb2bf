package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/face-kiosk/internal/config"
	"github.com/kozaktomas/face-kiosk/internal/database/postgres"
	"github.com/kozaktomas/face-kiosk/internal/faceapi"
	"github.com/kozaktomas/face-kiosk/internal/kiosk"
	"github.com/kozaktomas/face-kiosk/internal/profile"
	"github.com/kozaktomas/face-kiosk/internal/ros"
	"github.com/kozaktomas/face-kiosk/internal/web"
	"github.com/kozaktomas/face-kiosk/internal/web/middleware"
	"github.com/spf13/cobra"
)

// dispatchTick is how often the task queue is polled for work.
const dispatchTick = 50 * time.Millisecond

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the kiosk",
	Long: `Start the kiosk: the task dispatcher, the display web server and,
when ROSBRIDGE_URL is set, the rosbridge link to the robot side.`,
	RunE: runKiosk,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("port", 0, "Port to listen on (overrides KIOSK_WEB_PORT)")
	runCmd.Flags().String("host", "", "Host to bind to (overrides KIOSK_WEB_HOST)")
}

func runKiosk(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Web.Port = port
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Web.Host = host
	}
	if cfg.FaceAPI.Endpoint == "" {
		return fmt.Errorf("FACEAPI_ENDPOINT is required")
	}

	store, err := profile.NewStore(cfg.Storage.Root)
	if err != nil {
		return fmt.Errorf("could not open profile storage: %w", err)
	}

	// Optional rosbridge link. Without it the kiosk runs standalone.
	var bridge *ros.Client
	var recorder faceapi.Recorder
	if cfg.ROS.BridgeURL != "" {
		bridge, err = ros.Dial(cfg.ROS.BridgeURL)
		if err != nil {
			return fmt.Errorf("could not connect to rosbridge: %w", err)
		}
		defer bridge.Close()

		mirror, err := ros.NewAPIMirror(bridge)
		if err != nil {
			return fmt.Errorf("could not set up the API mirror: %w", err)
		}
		recorder = mirror
	}

	gateway, err := faceapi.New(cfg.FaceAPI.Endpoint, cfg.FaceAPI.AccessKey, cfg.FaceAPI.PersonGroup, recorder)
	if err != nil {
		return fmt.Errorf("could not create the face API client: %w", err)
	}

	screens := web.NewScreens()
	controller := kiosk.NewController(cfg, store, gateway, screens)

	// Optional PostgreSQL persistence for display pairings.
	var sessionRepo middleware.SessionRepository
	if cfg.Database.URL != "" {
		pool, err := postgres.Connect(&cfg.Database)
		if err != nil {
			return fmt.Errorf("could not connect to the database: %w", err)
		}
		defer pool.Close()
		sessionRepo = postgres.NewSessionRepository(pool)
		log.Println("Display pairings persisted to PostgreSQL")
	} else {
		log.Println("No DATABASE_URL set, display pairings kept in memory")
	}

	server := web.NewServer(cfg, controller, screens, sessionRepo)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if bridge != nil {
		statePub, err := startROSHandshake(bridge, controller, cfg.ROS.StatePublishHz)
		if err != nil {
			return err
		}
		defer statePub.Stop()
		controller.Enqueue(kiosk.StateROSConnection, nil)
	} else {
		controller.Enqueue(kiosk.StateStarted, nil)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		controller.Dispatcher().Run(ctx, dispatchTick)
	}()

	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}
	cancel()
	<-dispatcherDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// startROSHandshake wires the robot link: it listens for commands, starts
// the periodic state publisher and sends the hello event the robot side
// answers with hello_world_ack.
func startROSHandshake(bridge *ros.Client, controller *kiosk.Controller, publishHz float64) (*ros.StatePublisher, error) {
	err := bridge.Subscribe(ros.TopicCommand, ros.MsgTypeCommand, func(raw json.RawMessage) {
		var cmd ros.Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			log.Printf("could not unmarshal robot command: %v", err)
			return
		}
		switch cmd.Command {
		case ros.CommandHelloWorldAck:
			controller.Enqueue(kiosk.StateROSHelloWorldAck, nil)
		default:
			log.Printf("unknown robot command %q", cmd.Command)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("could not subscribe to robot commands: %w", err)
	}

	statePub, err := ros.NewStatePublisher(bridge, publishHz, func() ros.StateMessage {
		state, name := controller.Snapshot()
		return ros.StateMessage{State: string(state), LoggedIn: name}
	})
	if err != nil {
		return nil, fmt.Errorf("could not start the state publisher: %w", err)
	}
	statePub.Start()

	if err := bridge.Advertise(ros.TopicEvent, ros.MsgTypeEvent); err != nil {
		statePub.Stop()
		return nil, fmt.Errorf("could not advertise the event topic: %w", err)
	}
	if err := bridge.Publish(ros.TopicEvent, ros.EventMessage{Event: ros.EventHelloWorld}); err != nil {
		statePub.Stop()
		return nil, fmt.Errorf("could not publish the hello event: %w", err)
	}

	return statePub, nil
}
