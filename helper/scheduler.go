package helper

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const idempotencyRetention = 48 * time.Hour

var maintenanceCron *cron.Cron

// StartMaintenanceCron agenda a limpeza noturna dos registros de idempotência.
func StartMaintenanceCron() {
	maintenanceCron = cron.New()

	_, err := maintenanceCron.AddFunc("0 4 * * *", func() {
		log.Println("[CRON] Limpeza de idempotência iniciada")
		PurgeIdempotencyRecords(idempotencyRetention)
	})
	if err != nil {
		log.Fatal(err)
	}

	maintenanceCron.Start()
}

func StopMaintenanceCron() {
	if maintenanceCron != nil {
		maintenanceCron.Stop()
	}
}
