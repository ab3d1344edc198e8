package CronJobs

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"GasTrack/Ledger"
)

// ReconciliationChecker periodically recomputes every customer's balance from
// their transaction history and reports any customer whose cached balance
// disagrees with the ledger.
type ReconciliationChecker struct {
	cronScheduler *cron.Cron
	reader        *Ledger.Reader
	schedule      string
	saveToFile    bool
	jobID         cron.EntryID
}

// NewReconciliationChecker creates a new reconciliation checker with the given
// schedule. Format with seconds, e.g. "0 0 2 * * *" = 02:00:00 every day.
func NewReconciliationChecker(reader *Ledger.Reader, schedule string, saveToFile bool) *ReconciliationChecker {
	return &ReconciliationChecker{
		cronScheduler: cron.New(cron.WithSeconds()),
		reader:        reader,
		schedule:      schedule,
		saveToFile:    saveToFile,
	}
}

// Start initiates the reconciliation cron job.
func (r *ReconciliationChecker) Start() error {
	var err error
	r.jobID, err = r.cronScheduler.AddFunc(r.schedule, func() {
		log.Println("Running scheduled balance reconciliation")
		r.runCheck()
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	r.cronScheduler.Start()
	fmt.Printf("Reconciliation scheduler started with schedule %q\n", r.schedule)
	return nil
}

// Stop terminates the checker.
func (r *ReconciliationChecker) Stop() {
	if r.cronScheduler != nil {
		r.cronScheduler.Stop()
		log.Println("Reconciliation scheduler stopped")
	}
}

// UpdateSchedule changes when the checker runs.
func (r *ReconciliationChecker) UpdateSchedule(schedule string) error {
	r.cronScheduler.Remove(r.jobID)

	var err error
	r.jobID, err = r.cronScheduler.AddFunc(schedule, func() {
		log.Println("Running scheduled balance reconciliation")
		r.runCheck()
	})
	if err != nil {
		return fmt.Errorf("error updating schedule: %w", err)
	}

	r.schedule = schedule
	log.Printf("Reconciliation schedule updated to: %s\n", schedule)
	return nil
}

// RunManualCheck executes a reconciliation pass outside the schedule and
// returns the drifted customers.
func (r *ReconciliationChecker) RunManualCheck() ([]Ledger.DriftReport, error) {
	log.Println("Running manual balance reconciliation")
	return r.check()
}

func (r *ReconciliationChecker) runCheck() {
	drifted, err := r.check()
	if err != nil {
		log.Printf("Error in reconciliation check: %v\n", err)
		return
	}

	if len(drifted) == 0 {
		log.Println("All customer balances are in sync with the ledger")
		return
	}

	log.Printf("Found %d customer(s) with drifted balances\n", len(drifted))
	for _, report := range drifted {
		log.Printf("  customer %d (%s): cached financial %s, computed %s\n",
			report.CustomerID, report.Name,
			report.Cached.Financial.StringFixed(2),
			report.Computed.Financial.StringFixed(2))
	}

	if r.saveToFile {
		r.writeReport(drifted)
	}
}

func (r *ReconciliationChecker) check() ([]Ledger.DriftReport, error) {
	return r.reader.CheckAll()
}

// writeReport dumps the drift reports to a timestamped JSON file under logs/.
func (r *ReconciliationChecker) writeReport(drifted []Ledger.DriftReport) {
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Error creating logs directory: %v\n", err)
		return
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("logs/reconciliation_%s.json", timestamp)

	data, err := json.MarshalIndent(drifted, "", "  ")
	if err != nil {
		log.Printf("Error encoding reconciliation report: %v\n", err)
		return
	}
	if err := os.WriteFile(filename, data, 0666); err != nil {
		log.Printf("Error writing reconciliation report: %v\n", err)
		return
	}
	log.Printf("Reconciliation report written to %s\n", filename)
}
