package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultAuditInterval = 1 * time.Hour

// AuditReport summarizes one pass over every stored graph.
type AuditReport struct {
	Users      int            `json:"users"`
	Violations int            `json:"violations"`
	ByUser     map[string]int `json:"by_user,omitempty"`
	Failed     []string       `json:"failed,omitempty"`
}

// AuditorService periodically checks every user's graph for reciprocal edges
// that lost their inverse and logs what it finds.
type AuditorService struct {
	knowledge *KnowledgeService
	logger    *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewAuditorService(ks *KnowledgeService, logger *zap.Logger) *AuditorService {
	return &AuditorService{
		knowledge: ks,
		logger:    logger,
		interval:  defaultAuditInterval,
		stopCh:    make(chan struct{}),
	}
}

func (s *AuditorService) SetInterval(d time.Duration) {
	s.interval = d
}

// Start runs the audit on a periodic schedule in a background goroutine.
func (s *AuditorService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("graph auditor started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.Run(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("graph auditor stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the auditor. Calling it more than once is safe.
func (s *AuditorService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

// Run audits every user once.
func (s *AuditorService) Run(ctx context.Context) AuditReport {
	report := AuditReport{ByUser: make(map[string]int)}

	userIDs, err := s.knowledge.Users(ctx)
	if err != nil {
		s.logger.Error("failed to list users for audit", zap.Error(err))
		return report
	}
	report.Users = len(userIDs)

	for _, userID := range userIDs {
		violations, err := s.knowledge.Audit(ctx, userID)
		if err != nil {
			s.logger.Warn("failed to audit graph",
				zap.String("user_id", userID),
				zap.Error(err))
			report.Failed = append(report.Failed, userID)
			continue
		}
		if len(violations) == 0 {
			continue
		}

		report.ByUser[userID] = len(violations)
		report.Violations += len(violations)
		for _, v := range violations {
			s.logger.Warn("reciprocal edge missing",
				zap.String("user_id", userID),
				zap.String("subject", v.Edge.Subject.Key),
				zap.String("relation", v.Edge.Relation.String()),
				zap.String("object", v.Edge.Object.Key),
				zap.String("missing", v.Missing.Relation.String()))
		}
	}

	s.knowledge.lastAuditViolations.Store(int64(report.Violations))

	if report.Violations > 0 {
		s.logger.Error("graph audit found violations",
			zap.Int("users", report.Users),
			zap.Int("violations", report.Violations))
	}
	return report
}
