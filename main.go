package main

import (
	"log"
	"os"
	"time"

	"GasTrack/CronJobs"
	"GasTrack/FiberConfig"
	"GasTrack/Ledger"
	"GasTrack/Models"
	"GasTrack/middleware"
)

func main() {
	setupLogging()

	cfg := Models.LoadConfig()

	db, err := Models.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	prices := Ledger.PriceTableFromConfig(cfg)
	writer := Ledger.NewWriter(db, prices, time.Duration(cfg.RetentionHours)*time.Hour, cfg.BalanceRetries)
	reader := Ledger.NewReader(db)
	auth := middleware.NewAuth(db, cfg.JWTSecret)

	reconciler := CronJobs.NewReconciliationChecker(reader, cfg.ReconcileSchedule, true)
	if err := reconciler.Start(); err != nil {
		log.Printf("Failed to start reconciliation checker: %v", err)
	}
	defer reconciler.Stop()

	FiberConfig.FiberConfig(cfg, db, writer, reader, auth)
}

func setupLogging() {
	// Create logs directory if it doesn't exist
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Error creating logs directory: %v\n", err)
		return
	}

	logFile, err := os.OpenFile("logs/application.log",
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Error opening log file: %v\n", err)
		return
	}

	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime)
}
