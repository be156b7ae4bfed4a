// Package main starts the booking service.
//
// This process owns the session marketplace: user registration, session
// lifecycle, seat booking, and listings over a JSON HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	bookingcmd "github.com/tableside/tableside/internal/cmd/booking"
	platformcmd "github.com/tableside/tableside/internal/platform/cmd"
)

func main() {
	cfg, err := bookingcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[BOOKING] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceBooking, func(ctx context.Context) error {
		return bookingcmd.Run(ctx, cfg)
	})
	if err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
