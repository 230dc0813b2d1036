// Command anchorset picks a well-spread subset of anchor nodes from a file
// of pairwise latency measurements.
//
//	anchorset reduce --remove 2 latencies.yaml
//	anchorset reduce -n 1 --metrics site-a.yaml site-b.yaml
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	parser, err := newParser(ctx, &CLI{}, &streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
	if err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		parser.FatalIfErrorf(err)
	}

	err = kctx.Run()
	parser.FatalIfErrorf(err)
}
