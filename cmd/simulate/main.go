package main

import (
	"flag"
	"log"
	"math"
	"math/rand"
	"net"
	"time"

	"aoa-engine-go/geom"
	"aoa-engine-go/server"
)

// Generates synthetic ranging traffic: a tag orbiting the device while the
// device slowly pans. Useful for exercising the engine and viewer without
// hardware.
func main() {
	target := flag.String("target", "127.0.0.1:44333", "Engine UDP address")
	tagID := flag.Uint("tag", 0xB50AC, "Tag address")
	rate := flag.Float64("hz", 10, "Frames per second")
	orbitSec := flag.Float64("orbit", 60, "Seconds per full orbit of the tag")
	panDeg := flag.Float64("pan", 30, "Device pan amplitude in degrees")
	noise := flag.Float64("noise", 0.02, "Angular noise stddev in radians")
	flag.Parse()

	addr, err := net.ResolveUDPAddr("udp", *target)
	if err != nil {
		log.Fatalf("resolve %s: %v", *target, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	log.Printf("simulating tag %x against %s at %.0f Hz", *tagID, *target, *rate)

	interval := time.Duration(float64(time.Second) / *rate)
	start := time.Now()
	seq := uint8(0)

	for {
		t := time.Since(start).Seconds()

		// World-fixed tag orbiting the device at 2 m.
		worldAz := 2 * math.Pi * t / *orbitSec
		dist := 2.0

		// The device pans back and forth; what the antenna reports is the
		// tag bearing relative to the device facing.
		yaw := geom.Radians(*panDeg) * math.Sin(2*math.Pi*t/20)
		devicePose := geom.NewPose(geom.Origin, geom.YawPitchRoll(yaw, 0, 0))
		if _, err := conn.Write(server.PackPoseFrame(uint32(*tagID), devicePose)); err != nil {
			log.Fatalf("send pose: %v", err)
		}

		apparent := geom.NormalizeRadians(worldAz - yaw)
		reading := geom.SphericalFromRadians(
			apparent+rand.NormFloat64()**noise,
			rand.NormFloat64()**noise,
			dist+rand.NormFloat64()*0.05,
		).ToAnnotated()

		// The hardware only reports bearings it can actually see.
		if math.Abs(apparent) > geom.HalfPi {
			reading.HasElevation = false
			reading.AzimuthFOM = 0.4
		}

		if _, err := conn.Write(server.PackAoaFrame(uint32(*tagID), seq, reading)); err != nil {
			log.Fatalf("send aoa: %v", err)
		}
		seq++
		time.Sleep(interval)
	}
}
