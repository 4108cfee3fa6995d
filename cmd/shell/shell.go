package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/robertkrimen/isatty"

	hornql "github.com/hornql/hornql/pkg"
)

var url = flag.String("url", "ws://localhost:9000/ws", "URL of server to connect to")

func main() {
	// get cmdline flags
	flag.Parse()

	// connect to server
	client, connErr := hornql.NewClient(*url)
	if connErr != nil {
		fmt.Println("couldn't connect:", connErr)
		os.Exit(1)
		return
	}
	defer client.Close()

	// check if is TTY
	isInputTty := isatty.Check(os.Stdin.Fd())

	if isInputTty {
		fmt.Println("hornql shell")
		fmt.Println("\\h for help")
	}

	// initialize readline
	prompt := ""
	if isInputTty {
		prompt = fmt.Sprintf("%s> ", *url)
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       "/tmp/.hornql-history",
		InterruptPrompt:   "^C",
		EOFPrompt:         "bye!",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()

	for {
		line, readlineErr := l.Readline()
		if readlineErr != nil {
			fmt.Println("bye!")
			os.Exit(0)
		}

		if line == `\h` {
			fmt.Println(`\h                          help`)
			fmt.Println(`entity <id>                 create an entity`)
			fmt.Println(`type <id> <Label>           assert a type label`)
			fmt.Println(`set <id> <attr> = <value>   write an attribute`)
			fmt.Println(`link <id> <relation> <id>   add a relation`)
			fmt.Println(`match <atom> ^ <atom> ...   run a pattern`)
			fmt.Println(`infer                       run the rule engine`)
			continue
		}

		if len(strings.Trim(line, "\t ")) == 0 {
			continue
		}

		runStatement(client, line)
	}
}

func runStatement(client *hornql.Client, stmt string) {
	channel := client.Statement(stmt)
	msg := <-channel.Updates
	fmt.Printf("stmt %d: ", channel.StatementID)
	if msg.ErrorMessage != nil {
		fmt.Println("error:", *msg.ErrorMessage)
		return
	}
	if msg.BindingsMessage != nil {
		printJSON(msg.BindingsMessage)
		return
	}
	if msg.InferResultMessage != nil {
		fmt.Println(*msg.AckMessage)
		return
	}
	if msg.AckMessage != nil {
		fmt.Println(*msg.AckMessage)
		return
	}
}

func printJSON(thing interface{}) {
	indented, _ := json.MarshalIndent(thing, "", "  ")
	fmt.Printf("%s\n", indented)
}
