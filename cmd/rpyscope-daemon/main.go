// rpyscope-daemon watches registered Ren'Py projects for script changes and
// keeps their symbol indexes fresh.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"rpyscope/internal/daemon"
	"rpyscope/internal/logging"
	"rpyscope/internal/registry"
)

var logger *slog.Logger

func main() {
	logger = logging.Default("rpyscope-daemon")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "start":
		cmdStart(os.Args[2:])
	case "stop":
		cmdStop()
	case "status":
		cmdStatus()
	case "add":
		cmdAddRemove("add", os.Args[2:])
	case "remove":
		cmdAddRemove("remove", os.Args[2:])
	case "help", "--help", "-h":
		printUsage()
	default:
		logger.Error("unknown command", "command", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("rpyscope-daemon - Background indexing daemon")
	fmt.Println()
	fmt.Println("Usage: rpyscope-daemon <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  start            Start the daemon")
	fmt.Println("  stop             Stop the daemon")
	fmt.Println("  status           Show daemon status")
	fmt.Println("  add <path>       Register a project and start watching it")
	fmt.Println("  remove <path>    Unregister a project")
	fmt.Println("  help             Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  RPYSCOPE_LOG_LEVEL   Log level (debug, info, warn, error) [default: info]")
	fmt.Println("  RPYSCOPE_LOG_FORMAT  Output format (text, json) [default: text]")
}

func cmdStart(args []string) {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	foreground := fs.Bool("foreground", false, "Run in foreground (don't daemonize)")
	fs.Parse(args)

	client := daemon.NewIPCClient(daemon.DefaultSocketPath())
	if client.IsRunning() {
		logger.Error("daemon is already running")
		os.Exit(1)
	}

	reg, err := registry.NewRegistry()
	if err != nil {
		logger.Error("failed to load registry", "error", err)
		os.Exit(1)
	}

	cfg := daemon.DefaultConfig()

	d, err := daemon.New(reg, cfg)
	if err != nil {
		logger.Error("failed to create daemon", "error", err)
		os.Exit(1)
	}

	if !*foreground {
		// TODO: proper daemonization via a service manager
		logger.Info("note: run with --foreground or use '&' to background")
	}
	logger.Info("starting daemon", "pid", os.Getpid())
	if err := d.Run(cfg); err != nil {
		logger.Error("daemon error", "error", err)
		os.Exit(1)
	}
}

func cmdStop() {
	client := daemon.NewIPCClient(daemon.DefaultSocketPath())
	if !client.IsRunning() {
		logger.Error("daemon is not running")
		os.Exit(1)
	}

	if err := client.Stop(); err != nil {
		logger.Error("failed to stop daemon", "error", err)
		os.Exit(1)
	}

	logger.Info("daemon stopped")
}

func cmdStatus() {
	client := daemon.NewIPCClient(daemon.DefaultSocketPath())

	status, err := client.Status()
	if err != nil {
		logger.Info("daemon is not running")
		os.Exit(1)
	}

	// Status goes to stdout as data output
	data, _ := json.MarshalIndent(status, "", "  ")
	fmt.Println(string(data))
}

func cmdAddRemove(action string, args []string) {
	if len(args) < 1 {
		logger.Error("path required", "command", action)
		os.Exit(1)
	}

	client := daemon.NewIPCClient(daemon.DefaultSocketPath())
	if !client.IsRunning() {
		logger.Error("daemon is not running")
		os.Exit(1)
	}

	resp, err := client.Send(daemon.Command{Action: action, Path: args[0]})
	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
	if resp.Status != "ok" {
		logger.Error("command rejected", "message", resp.Message)
		os.Exit(1)
	}
	logger.Info(resp.Message, "path", args[0])
}
