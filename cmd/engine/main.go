package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"aoa-engine-go/binlog"
	"aoa-engine-go/correction"
	"aoa-engine-go/export"
	"aoa-engine-go/primers"
	"aoa-engine-go/server"
	"aoa-engine-go/web"
)

func main() {
	port := flag.Int("port", server.DefaultPort, "UDP port to listen on")
	httpPort := flag.Int("http", 0, "HTTP/WebSocket port (e.g. 8080). 0 to disable.")
	profilePath := flag.String("profile", "", "Path to profile.xml (empty uses built-in defaults)")
	distDir := flag.String("dist", "", "Directory with the built web frontend")
	pcapPath := flag.String("pcap", "", "Path to output capture file (optional)")
	exportUDP := flag.String("export-udp", "", "Comma-separated UDP position targets (host:port)")
	exportTCP := flag.String("export-tcp", "", "Comma-separated TCP position targets (host:port)")
	exportHdr := flag.String("export-hdr", "", "Header string prefixed to export lines")
	debug := flag.Bool("debug", false, "Per-reading engine trace")
	flag.Parse()

	correction.Debug = *debug
	primers.Debug = *debug

	profile := correction.DefaultProfile()
	if *profilePath != "" {
		p, err := correction.LoadProfile(*profilePath)
		if err != nil {
			log.Fatalf("load profile: %v", err)
		}
		profile = p
	}
	// Fail on a bad profile now rather than on the first packet.
	if probe, err := profile.NewEngine(nil); err != nil {
		log.Fatalf("invalid profile: %v", err)
	} else {
		probe.Close()
	}

	udpSvr, err := server.NewUdpServer(*port, profile)
	if err != nil {
		log.Fatalf("create UDP server: %v", err)
	}

	if *httpPort > 0 {
		webSvr := web.NewServer()
		webSvr.TagProvider = udpSvr.GetTags
		go webSvr.Start(*httpPort, *distDir, *profilePath)
		udpSvr.SetWebHub(webSvr.Hub)
	}

	if *exportUDP != "" || *exportTCP != "" {
		sender := export.NewSender()
		sender.SetHeader(*exportHdr)
		for _, addr := range splitAddrs(*exportUDP) {
			if err := sender.AddUDPTarget(addr, export.FlagPosition); err != nil {
				log.Fatalf("export target %s: %v", addr, err)
			}
			log.Printf("exporting positions to udp://%s", addr)
		}
		for _, addr := range splitAddrs(*exportTCP) {
			sender.AddTCPTarget(addr, export.FlagPosition)
			log.Printf("exporting positions to tcp://%s", addr)
		}
		if err := sender.Start(); err != nil {
			log.Fatalf("start export sender: %v", err)
		}
		udpSvr.SetSender(sender)
		defer sender.Stop()
	}

	if *pcapPath != "" {
		path := *pcapPath
		if fi, err := os.Stat(path); err == nil && fi.IsDir() {
			path = fmt.Sprintf("%s/ARF_%s.pcap", path, time.Now().Format("20060102150405"))
		}
		pw, err := binlog.NewFileWriter(path)
		if err != nil {
			log.Fatalf("create capture writer: %v", err)
		}
		defer pw.Close()
		udpSvr.SetPcapWriter(pw)
		log.Printf("logging packets to %s", path)
	}

	go udpSvr.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("shutting down")
	udpSvr.Stop()
}

func splitAddrs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
