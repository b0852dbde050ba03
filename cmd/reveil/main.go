package main

import (
	"fmt"
	"os"
	"strconv"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	args := os.Args[1:]
	volume := -1
	configPath := ""

	// Parse flags
	filtered := args[:0]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--volume", "-v":
			if i+1 < len(args) {
				v, err := strconv.Atoi(args[i+1])
				if err != nil || v < 0 || v > 100 {
					fmt.Fprintf(os.Stderr, "Error: volume must be a number between 0 and 100\n")
					os.Exit(1)
				}
				volume = v
				i++
			} else {
				fmt.Fprintf(os.Stderr, "Error: --volume requires a value (0-100)\n")
				os.Exit(1)
			}
		case "--config", "-c":
			if i+1 < len(args) {
				configPath = args[i+1]
				i++
			} else {
				fmt.Fprintf(os.Stderr, "Error: --config requires a file path\n")
				os.Exit(1)
			}
		default:
			filtered = append(filtered, args[i])
		}
	}

	if len(filtered) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch filtered[0] {
	case "help", "-h", "--help":
		printUsage()
	case "version", "-V", "--version":
		printVersion()
	case "run":
		runCmd(configPath)
	case "sounds":
		soundsCmd()
	case "stations":
		stationsCmd(configPath)
	case "play":
		playCmd(filtered[1:], configPath, volume)
	case "history":
		historyCmd(filtered[1:])
	case "clean":
		cleanCmd(filtered[1:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", filtered[0])
		fmt.Fprintf(os.Stderr, "Run 'reveil help' for usage.\n")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`reveil - alarm clock engine

Usage:
  reveil run                  Start the engine and dashboard
  reveil sounds               List built-in alarm tones
  reveil stations             List radio stations
  reveil play <sound>         Audition a tone or radio:<stationId>
  reveil history [days]       Show ring history (default 7 days)
  reveil clean [days]         Remove history older than N days (default 30)
  reveil version              Show version
  reveil help                 Show this help

Flags:
  --config, -c <path>   Use a specific config file
  --volume, -v <0-100>  Playback volume for 'play'
`)
}

func printVersion() {
	fmt.Printf("reveil %s (built %s)\n", version, buildDate)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
