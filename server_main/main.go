// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"github.com/SoftbearStudios/terra/server"
	"github.com/SoftbearStudios/terra/server/cloud"
	"github.com/SoftbearStudios/terra/server/config"
	"golang.org/x/net/netutil"
	"log"
	"net"
	"net/http"
	_ "net/http/pprof"
)

func main() {
	var (
		configPath     string
		port           int
		maxConnections int
		viewers        int
		workers        int
		offline        bool
	)

	flag.StringVar(&configPath, "config", "", "yaml config file (defaults if empty)")
	flag.IntVar(&port, "port", 8192, "http service port")
	flag.IntVar(&viewers, "viewers", 0, "minimum number of viewers (topped up with bots)")
	flag.IntVar(&maxConnections, "max-connections", 256, "maximum number of inbound TCP connections")
	flag.IntVar(&workers, "workers", 0, "generation workers (0 is one per CPU)")
	flag.BoolVar(&offline, "offline", false, "don't connect to the cloud")
	flag.Parse()

	if viewers < 0 {
		log.Fatal("invalid argument viewers: ", viewers)
	}
	if maxConnections < 1 {
		log.Fatal("invalid argument max-connections: ", maxConnections)
	}

	cfg := new(config.Config)
	if configPath == "" {
		*cfg = config.Default()
	} else {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			log.Fatal(err)
		}
	}

	// Flags that were set override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = port
		case "max-connections":
			cfg.Server.MaxConnections = maxConnections
		case "viewers":
			cfg.Server.MinViewers = viewers
		case "workers":
			cfg.Pipeline.Workers = workers
		}
	})
	cfg.Clamp()

	var c server.Cloud = server.Offline{}
	if !offline {
		if cc, err := cloud.New(); err != nil {
			// Cloud is not required for server to function, just log an error
			log.Printf("Cloud error: %v\n", err)
		} else {
			c = cc
		}
	}

	hub := server.NewHub(server.HubOptions{
		Config:     cfg,
		Cloud:      c,
		MinViewers: -1,
	})

	go hub.Run()

	if cfg.Server.Port < 0 {
		log.Println("terra generation started")
		// Block forever
		<-make(chan struct{})
	}

	log.Printf("terra server started on :%d (seed %d)", cfg.Server.Port, cfg.Noise.Seed)

	http.HandleFunc("/", hub.ServeIndex)
	http.HandleFunc("/ws", hub.ServeSocket)
	http.HandleFunc("/preview", hub.ServePreview)

	l, err := net.Listen("tcp", fmt.Sprint(":", cfg.Server.Port))
	if err != nil {
		log.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	l = netutil.LimitListener(l, cfg.Server.MaxConnections)

	log.Fatal("ListenAndServe: ", http.Serve(l, nil))
}
