package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	hornql "github.com/hornql/hornql/pkg"
)

var port = flag.Int("port", 9000, "port to listen on")
var host = flag.String("host", "0.0.0.0", "host to listen on")
var configFile = flag.String("config", "", "YAML config file (thresholds, current date)")
var factsFile = flag.String("facts", "", "YAML facts file to load at boot")

func main() {
	// get cmdline flags
	flag.Parse()

	fmt.Println("hornql server")

	cfg := hornql.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = hornql.LoadConfig(*configFile)
		if err != nil {
			log.Fatalln("bad config:", err)
		}
	}

	server, err := hornql.NewServer(cfg, *host, *port)
	if err != nil {
		log.Fatalln("failed to start:", err)
	}

	if *factsFile != "" {
		facts, err := hornql.ReadFactsFile(*factsFile)
		if err != nil {
			log.Fatalln("failed to read facts:", err)
		}
		count, err := server.Database().LoadFacts(facts)
		if err != nil {
			log.Fatalln("failed to load facts:", err)
		}
		log.Printf("loaded %d statements from %s\n", count, *factsFile)
	}

	// graceful shutdown on Ctrl-C
	ctrlCChan := make(chan os.Signal, 1)
	signal.Notify(ctrlCChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlCChan
		if err := server.Close(); err != nil {
			log.Println("error closing:", err)
		}
		os.Exit(0)
	}()

	if err := server.ListenAndServe(); err != nil {
		log.Fatal("error listening:", err)
	}
}
