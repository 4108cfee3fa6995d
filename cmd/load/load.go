package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	hornql "github.com/hornql/hornql/pkg"
)

var url = flag.String("url", "ws://localhost:9000/ws", "URL of server to connect to")
var factsFile = flag.String("facts", "", "YAML facts file to push")
var infer = flag.Bool("infer", false, "run the rule engine after loading")

func main() {
	flag.Parse()

	if *factsFile == "" {
		fmt.Println("-facts is required")
		os.Exit(1)
	}

	facts, err := hornql.ReadFactsFile(*factsFile)
	if err != nil {
		log.Fatalln("failed to read facts:", err)
	}

	client, err := hornql.NewClient(*url)
	if err != nil {
		log.Fatalln("couldn't connect:", err)
	}
	defer client.Close()

	stmts := facts.Statements()
	for _, stmt := range stmts {
		if _, err := client.Exec(stmt); err != nil {
			log.Fatalf("%s: %v", stmt, err)
		}
	}
	log.Printf("pushed %d statements\n", len(stmts))

	if *infer {
		stats, err := client.Infer()
		if err != nil {
			log.Fatalln("infer failed:", err)
		}
		log.Printf("converged after %d passes; derived %d types, %d attributes\n",
			stats.Passes, stats.DerivedTypes, stats.DerivedAttrs)
	}
}
