// Command ftpipe-recv listens for incoming file transfers and writes them
// under a destination directory.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ftpipe-project/ftpipe/config"
	"github.com/ftpipe-project/ftpipe/internal/session"
	"github.com/ftpipe-project/ftpipe/internal/watch"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <destination_folder> [listen_address]\n", os.Args[0])
		os.Exit(1)
	}

	destDir := os.Args[1]

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}
	cfg.Receiver.DestinationDir = destDir

	listenAddr := cfg.Receiver.ListenAddress
	if len(os.Args) >= 3 {
		listenAddr = os.Args[2]
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		log.Fatalf("creating destination directory %s: %v", destDir, err)
	}

	if cfg.Receiver.WatchDestination {
		w, err := watch.New(destDir)
		if err != nil {
			log.Fatalf("watching destination directory: %v", err)
		}
		defer w.Close()
	}

	acceptor, err := session.Listen(listenAddr, destDir, cfg.ConnOptions())
	if err != nil {
		log.Fatalf("listening on %s: %v", listenAddr, err)
	}
	defer acceptor.Close()

	log.Printf("ftpipe-recv: listening on %s, writing into %s", acceptor.Addr(), destDir)
	if err := acceptor.Serve(); err != nil {
		log.Fatalf("accept loop: %v", err)
	}
}
