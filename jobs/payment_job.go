package jobs

import (
	"context"
	"log"
	"time"

	"github.com/anjiri1684/tuition_marketplace/services"
	"github.com/robfig/cron/v3"
)

// StalePaymentJob fails payments the gateway never confirmed.
type StalePaymentJob struct {
	Payments *services.PaymentService
	MaxAge   time.Duration
}

func (j *StalePaymentJob) Run() {
	log.Println("Running job: FailStalePayments...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := j.Payments.FailStale(ctx, j.MaxAge)
	if err != nil {
		log.Printf("Error failing stale payments: %v", err)
		return
	}
	if n == 0 {
		log.Println("No stale payments found.")
		return
	}
	log.Printf("Marked %d stale payment(s) as failed.", n)
}

// Schedule registers every background job on c.
func Schedule(c *cron.Cron, payments *services.PaymentService, staleAfter time.Duration) error {
	if _, err := c.AddJob("*/15 * * * *", &StalePaymentJob{Payments: payments, MaxAge: staleAfter}); err != nil {
		return err
	}
	log.Println("✅ Cron job for stale payments scheduled successfully.")
	return nil
}
