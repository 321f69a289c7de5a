package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled background jobs
type CronService struct {
	cron        *cron.Cron
	libService  *LibraryService
	authService *AuthService
	notifier    *NotificationService
}

// NewCronService creates a new cron service
func NewCronService(libService *LibraryService, authService *AuthService, notifier *NotificationService) *CronService {
	return &CronService{
		cron:        cron.New(),
		libService:  libService,
		authService: authService,
		notifier:    notifier,
	}
}

// Start registers jobs and starts the scheduler
func (s *CronService) Start() error {
	// Overdue reminders every morning at 08:30
	if _, err := s.cron.AddFunc("30 8 * * *", s.runOverdueScan); err != nil {
		return err
	}

	// Expired refresh tokens purged nightly at 03:00
	if _, err := s.cron.AddFunc("0 3 * * *", s.runTokenPurge); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("🚀 Cron scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron scheduler stopped")
}

// runOverdueScan emails every member holding an overdue book
func (s *CronService) runOverdueScan() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	overdue, err := s.libService.ListOverdue(ctx)
	if err != nil {
		log.Printf("❌ Overdue scan failed: %v", err)
		return
	}

	now := time.Now()
	sent := 0
	for _, tx := range overdue {
		if tx.Member == nil || tx.Member.Profile == nil || tx.Member.Profile.User == nil {
			continue
		}
		if tx.BookCopy == nil || tx.BookCopy.Book == nil {
			continue
		}

		days := int(now.Sub(tx.DueDate).Hours() / 24)
		if days < 1 {
			days = 1
		}
		fine := float64(days) * DailyFineRate

		s.notifier.SendOverdueNotice(
			ctx,
			tx.Member.Profile.User.Email,
			tx.Member.Profile.Name,
			tx.BookCopy.Book.Title,
			days,
			fine,
		)
		sent++
	}

	log.Printf("✅ Overdue scan complete: %d loans overdue, %d notices sent", len(overdue), sent)
}

// runTokenPurge drops refresh tokens past their expiry
func (s *CronService) runTokenPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.authService.PurgeExpiredTokens(ctx); err != nil {
		log.Printf("❌ Refresh token purge failed: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens purged")
}
