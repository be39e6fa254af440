package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chargectl/internal/battery"
	"chargectl/internal/config"
	"chargectl/internal/handlers"
	"chargectl/internal/logger"
	"chargectl/internal/plug"
	"chargectl/internal/repository"
	"chargectl/internal/server"
	"chargectl/internal/service"

	"github.com/spf13/cobra"

	_ "chargectl/docs"
)

const (
	defaultSimTick = 1 * time.Second
	commandTimeout = 30 * time.Second
)

var (
	configPath string
	simulate   bool
)

var rootCmd = &cobra.Command{
	Use:           "chargectl",
	Short:         "Battery charge controller for a TP-Link smart plug",
	Long:          "chargectl keeps a laptop battery inside a configured band by toggling the smart plug its charger is connected to.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the control loop and the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current battery reading and plug state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus()
	},
}

var deviceInfoCmd = &cobra.Command{
	Use:   "device-info",
	Short: "Print smart plug device details",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeviceInfo()
	},
}

var onCmd = &cobra.Command{
	Use:   "on",
	Short: "Turn the plug on once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSwitch(true)
	},
}

var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Turn the plug off once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSwitch(false)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default configs/config.yml)")
	rootCmd.PersistentFlags().BoolVar(&simulate, "simulate", false, "use a simulated battery and plug instead of real hardware")

	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(deviceInfoCmd)
	rootCmd.AddCommand(onCmd)
	rootCmd.AddCommand(offCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig loads the file/env configuration and applies the --simulate flag
// on top, so the flag wins over both.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if simulate {
		cfg.Simulate = true
	}
	return cfg, nil
}

// buildCollaborators picks the battery sensor and plug controller pair:
// real hardware plus the cloud API, or the in-process simulator for both.
func buildCollaborators(cfg *config.Config) (battery.Sensor, plug.Controller, *service.Simulator) {
	if cfg.Simulate {
		sim := service.NewSimulator()
		return sim, sim, sim
	}
	return battery.NewSystemSensor(), plug.NewCloudController(cfg.Cloud, cfg.Charging), nil
}

func runMonitor() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	log := logger.Get(cfg.LogLevel)

	sensor, plugCtl, sim := buildCollaborators(cfg)

	// wire dependencies
	repos := repository.NewRepository()
	services := service.NewService(repos, sensor, plugCtl, cfg, log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sim != nil {
		log.Infow("running in simulation mode, no hardware will be touched")
		go sim.Run(ctx, defaultSimTick)
	}

	// start the control loop
	go services.Loop.Run(ctx)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	log.Infow("chargectl started",
		"port", cfg.Port,
		"start_threshold", cfg.Charging.StartThreshold,
		"stop_threshold", cfg.Charging.StopThreshold,
		"poll_interval", cfg.Charging.PollInterval,
		"simulate", cfg.Simulate,
	)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
	return nil
}

func runStatus() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	sensor, plugCtl, _ := buildCollaborators(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	reading, err := sensor.Read()
	if err != nil {
		return fmt.Errorf("read battery: %w", err)
	}
	state, err := plugCtl.Status(ctx)
	if err != nil {
		return fmt.Errorf("read plug state: %w", err)
	}

	fmt.Printf("battery: %.1f%% (%s)\n", reading.Percent, reading.Source)
	fmt.Printf("plug:    %s\n", state)
	return nil
}

func runDeviceInfo() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	_, plugCtl, _ := buildCollaborators(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	info, err := plugCtl.Info(ctx)
	if err != nil {
		return fmt.Errorf("fetch device info: %w", err)
	}

	out, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runSwitch(on bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	_, plugCtl, _ := buildCollaborators(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var ok bool
	if on {
		ok, err = plugCtl.TurnOn(ctx)
	} else {
		ok, err = plugCtl.TurnOff(ctx)
	}
	if err != nil {
		return fmt.Errorf("switch plug: %w", err)
	}
	if !ok {
		return fmt.Errorf("plug did not confirm the new state")
	}

	if on {
		fmt.Println("plug turned on")
	} else {
		fmt.Println("plug turned off")
	}
	return nil
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
