package common

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pixai-app/pixai-api/common/logger"
)

var (
	Port         = flag.Int("port", 4000, "the listening port")
	PrintVersion = flag.Bool("version", false, "print version and exit")
	PrintHelp    = flag.Bool("help", false, "print help and exit")
	LogDir       = flag.String("log-dir", "", "specify the log directory")
)

func printHelp() {
	fmt.Println("PixAI API " + Version + " - credit metered image processing proxy.")
	fmt.Println("Usage: pixai-api [--port <port>] [--log-dir <log directory>] [--version] [--help]")
}

// Init parses the command line. It lives outside init() so that test
// binaries keep their own flags.
func Init() {
	flag.Parse()

	if *PrintVersion {
		fmt.Println(Version)
		os.Exit(0)
	}
	if *PrintHelp {
		printHelp()
		os.Exit(0)
	}

	if os.Getenv("SQLITE_PATH") != "" {
		SQLitePath = os.Getenv("SQLITE_PATH")
	}

	// flag > env > default
	logDir := *LogDir
	if logDir == "" {
		logDir = os.Getenv("LOG_DIR")
	}
	if logDir == "" {
		return
	}
	logDir, err := filepath.Abs(logDir)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		if err = os.MkdirAll(logDir, 0777); err != nil {
			log.Fatal(err)
		}
	}
	logger.LogDir = logDir
}
