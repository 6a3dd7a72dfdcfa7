package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/repository"
	"github.com/google/uuid"
)

// DigestJob reminds users about interested requests created during the previous day.
type DigestJob struct {
	requestRepo repository.ConnectionRequestRepository
	userRepo    repository.UserRepository
	dispatcher  *Dispatcher
	log         *slog.Logger
}

func NewDigestJob(
	requestRepo repository.ConnectionRequestRepository,
	userRepo repository.UserRepository,
	dispatcher *Dispatcher,
	log *slog.Logger,
) *DigestJob {
	return &DigestJob{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		dispatcher:  dispatcher,
		log:         log,
	}
}

// Run enqueues one digest per recipient and returns how many were enqueued.
func (j *DigestJob) Run(ctx context.Context, now time.Time) (int, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)

	pending, err := j.requestRepo.ListCreatedBetween(ctx, domain.StatusInterested, yesterday, today)
	if err != nil {
		return 0, err
	}

	byRecipient := make(map[uuid.UUID][]uuid.UUID)
	var order []uuid.UUID
	for _, req := range pending {
		if _, seen := byRecipient[req.ToUserID]; !seen {
			order = append(order, req.ToUserID)
		}
		byRecipient[req.ToUserID] = append(byRecipient[req.ToUserID], req.FromUserID)
	}

	sent := 0
	for _, recipientID := range order {
		recipient, err := j.userRepo.GetByID(ctx, recipientID)
		if err != nil {
			j.log.Warn("digest recipient lookup failed", "user_id", recipientID, "error", err)
			continue
		}

		senderIDs := byRecipient[recipientID]
		preview := senderIDs
		if len(preview) > digestPreview {
			preview = preview[:digestPreview]
		}
		senders, err := j.userRepo.GetPublicByIDs(ctx, preview)
		if err != nil {
			j.log.Warn("digest sender lookup failed", "user_id", recipientID, "error", err)
			senders = nil
		}

		j.dispatcher.Enqueue(Event{
			Kind:  KindPendingDigest,
			To:    recipient,
			From:  senders,
			Count: len(senderIDs),
		})
		sent++
	}

	j.log.Info("pending request digest enqueued", "recipients", sent, "requests", len(pending))
	return sent, nil
}

// Scheduler runs the digest job on a fixed interval until stopped.
type Scheduler struct {
	job      *DigestJob
	interval time.Duration
	log      *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewScheduler(job *DigestJob, interval time.Duration, log *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		job:      job,
		interval: interval,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() {
	s.log.Info("starting digest scheduler", "interval", s.interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case now := <-ticker.C:
				if _, err := s.job.Run(s.ctx, now); err != nil {
					s.log.Error("digest job failed", "error", err)
				}
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	s.log.Info("digest scheduler stopped")
}
