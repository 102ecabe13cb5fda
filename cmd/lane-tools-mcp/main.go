package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/lane-tools-mcp/internal/config"
	"github.com/ironsheep/lane-tools-mcp/internal/pipeline"
	"github.com/ironsheep/lane-tools-mcp/internal/server"
	"github.com/ironsheep/lane-tools-mcp/internal/video"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("lane-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("LANE_MCP_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("Lane MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if debug {
		if path := os.Getenv(config.EnvConfigPath); path != "" {
			log.Printf("Loaded config from %s", path)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "process" {
		if len(os.Args) != 4 {
			fmt.Fprintln(os.Stderr, "Usage: lane-tools-mcp process <input> <output-dir>")
			os.Exit(2)
		}
		if err := process(ctx, cfg, os.Args[2], os.Args[3], debug); err != nil {
			log.Fatalf("Process error: %v", err)
		}
		return
	}

	server.Version = Version
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Server error: %v", err)
	}
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Server error: %v", err)
	}
}

// process runs the pipeline over every frame of input and writes the
// overlays to outDir.
func process(ctx context.Context, cfg *config.Config, input, outDir string, debug bool) error {
	proc, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	proc.Debug = debug

	src, err := video.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	sink, err := video.NewDirSink(outDir, "overlay")
	if err != nil {
		return err
	}
	defer sink.Close()

	stats, err := proc.Run(ctx, src, sink)
	if err != nil {
		return err
	}
	fmt.Printf("Processed %d frames in %s (%.1f fps)\n", stats.Frames, stats.Elapsed, stats.FPS())
	return nil
}

func printUsage() {
	fmt.Println("lane-tools-mcp - MCP server for lane boundary detection")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lane-tools-mcp [options]                       Serve MCP over stdin/stdout")
	fmt.Println("  lane-tools-mcp process <input> <output-dir>    Draw lanes on every frame")
	fmt.Println()
	fmt.Println("<input> is a directory of frames, or a video file when built with -tags gocv.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  LANE_MCP_LOG_LEVEL=debug     Enable debug logging")
	fmt.Println("  LANE_MCP_CONFIG=<file.json>  Load settings (see config/lane.defaults.json)")
	fmt.Println()
	fmt.Println("In server mode, configure it in your MCP client (e.g., Claude Desktop).")
}
