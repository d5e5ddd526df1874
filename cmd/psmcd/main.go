package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"

	"psmc"
	"psmc/ltl"
	"psmc/service"
)

var (
	help = flag.Bool(
		"help",
		false,
		"Show usage help",
	)
	endpoint = flag.String(
		"endpoint",
		"localhost:12111",
		"Endpoint on which the server runs",
	)
	translator = flag.String(
		"translator",
		"ltl2ba",
		"LTL to Büchi translator: ltl2ba, ltl2tgba or the path of a compatible program",
	)
	verbose = flag.Bool(
		"verbose",
		false,
		"Log the progress of every check",
	)
)

// Usage prints usage info
func Usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = Usage
	flag.Parse()
	if *help {
		flag.Usage()
		return
	}

	listener, err := net.Listen("tcp", *endpoint)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	log.Printf("Listener started on %v\n", *endpoint)

	server := service.NewServer(*verbose, []psmc.CheckerOption{psmc.WithTranslator(ltl.ByName(*translator, *verbose))})
	if err := server.Serve(listener); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
