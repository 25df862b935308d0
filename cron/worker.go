package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"asap/config"
	"asap/models"

	"github.com/hibiken/asynq"
)

const TypePaymentReconcile = "payment:reconcile"

// ReconcilePayload describes a payment that moved money without a booking
// being recorded. The worker only surfaces it; resolution is out-of-band.
type ReconcilePayload struct {
	CheckoutID       string  `json:"checkoutId"`
	GatewayPaymentID string  `json:"gatewayPaymentId"`
	GatewayOrderID   string  `json:"gatewayOrderId"`
	Amount           float64 `json:"amount"`
	Reason           string  `json:"reason"`
	FlaggedAt        string  `json:"flaggedAt"`
}

func queueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// Enqueuer publishes reconciliation flags onto the queue. It satisfies the
// checkout saga's GapFlagger dependency.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer() *Enqueuer {
	return &Enqueuer{client: asynq.NewClient(queueRedisOpt())}
}

func (e *Enqueuer) FlagGap(ctx context.Context, checkoutID string, proof models.PaymentProof, amount float64, reason string) error {
	payload, err := json.Marshal(ReconcilePayload{
		CheckoutID:       checkoutID,
		GatewayPaymentID: proof.GatewayPaymentID,
		GatewayOrderID:   proof.GatewayOrderID,
		Amount:           amount,
		Reason:           reason,
		FlaggedAt:        time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, asynq.NewTask(TypePaymentReconcile, payload))
	return err
}

// InitReconcileWorker runs the async worker in background.
func InitReconcileWorker() {
	srv := asynq.NewServer(
		queueRedisOpt(),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePaymentReconcile, handleReconcileTask)

	// Start async worker with retry logic
	go func() {
		log.Println("[ReconcileWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReconcileWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReconcileWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleReconcileTask(_ context.Context, task *asynq.Task) error {
	var p ReconcilePayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		log.Printf("[ReconcileHandler] invalid payload: %v", err)
		return err
	}

	// Deliberately no automatic repair: the gap between a captured payment
	// and a missing booking is resolved by operators out-of-band.
	log.Printf("[ReconcileHandler] payment without booking: checkout=%s payment=%s order=%s amount=%.2f reason=%s flaggedAt=%s",
		p.CheckoutID, p.GatewayPaymentID, p.GatewayOrderID, p.Amount, p.Reason, p.FlaggedAt)
	return nil
}
