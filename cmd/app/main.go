package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"ZoneWatch/internal/di"
	"ZoneWatch/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	check := flag.Bool("check", false, "validate the config, print the resolved thresholds and exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config %s: %v", *configPath, err)
	}
	if *check {
		th, _ := cfg.ZoneThresholds()
		fmt.Printf("config ok: orders=%s price_source=%s symbols=%v thresholds=%+v\n",
			cfg.Orders.Backend, cfg.Monitor.PriceSource, cfg.Monitor.Symbols, th)
		return
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	// until SIGINT or SIGTERM
	if err := app.Run(); err != nil {
		log.Printf("zonewatch: %v", err)
		os.Exit(1)
	}
}
