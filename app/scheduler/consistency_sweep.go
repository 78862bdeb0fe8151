// Package scheduler
package scheduler

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fasehq/backoffice/models"
	"github.com/fasehq/backoffice/repository"
	"github.com/fasehq/backoffice/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
)

var duplicateMemberIDs = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "fase_duplicate_member_ids",
		Help: "Number of member ids currently present in more than one organization roster",
	},
)

const sweepSummaryKey = "consistency_sweep:last"

// ConsistencySweep periodically scans the rosters for member ids that appear
// under more than one organization. Duplicates are legitimate data, but every
// one of them makes identity resolution ambiguous, so the sweep keeps them
// visible: a gauge for dashboards, an audit entry for the trail, and a summary
// in the cache for the back office to show.
type ConsistencySweep struct {
	memberRepo repository.OrganizationMemberRepository
	auditRepo  repository.AuditLogRepository
	cache      *redis.Client
	logger     *log.Logger
	interval   time.Duration
}

func NewConsistencySweep(
	memberRepo repository.OrganizationMemberRepository,
	auditRepo repository.AuditLogRepository,
	cache *redis.Client,
	interval time.Duration,
) *ConsistencySweep {
	if interval <= 0 {
		interval = time.Hour
	}

	s := &ConsistencySweep{
		memberRepo: memberRepo,
		auditRepo:  auditRepo,
		cache:      cache,
		interval:   interval,
	}
	s.initSweepLogger()
	return s
}

// initSweepLogger configures a logger that writes to both stdout and a rotating file under data/
func (s *ConsistencySweep) initSweepLogger() {
	logDir := "data"
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		s.logger = log.Default()
		s.logger.Printf("sweep: failed to create log directory: %v", err)
		return
	}

	rotating := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "consistency_sweep.log"),
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	mw := io.MultiWriter(os.Stdout, rotating)
	s.logger = log.New(mw, "sweep ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Start launches the sweep loop in a background goroutine and returns a stop function
func (s *ConsistencySweep) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *ConsistencySweep) runOnce(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	duplicates, err := s.memberRepo.ListDuplicateMemberIDs(sweepCtx)
	if err != nil {
		s.logger.Printf("sweep: list duplicate member ids failed: %v", err)
		return
	}

	duplicateMemberIDs.Set(float64(len(duplicates)))
	if len(duplicates) == 0 {
		s.storeSummary(sweepCtx, nil)
		return
	}

	s.logger.Printf("sweep: %d member ids present in multiple rosters", len(duplicates))
	for _, id := range duplicates {
		memberships, err := s.memberRepo.ByMemberID(sweepCtx, id)
		if err != nil {
			s.logger.Printf("sweep: lookup memberships for %s failed: %v", id, err)
			continue
		}
		orgs := make([]string, 0, len(memberships))
		for _, m := range memberships {
			orgs = append(orgs, m.OrganizationID)
		}
		s.logger.Printf("sweep: member id %s appears in organizations %v", id, orgs)
	}

	s.recordSweep(sweepCtx, duplicates)
	s.storeSummary(sweepCtx, duplicates)
}

func (s *ConsistencySweep) recordSweep(ctx context.Context, duplicates []string) {
	meta, _ := json.Marshal(map[string]any{
		"duplicate_member_ids": duplicates,
		"count":                len(duplicates),
	})

	entry := &models.AuditLog{
		Action:      models.AuditActionConsistencySweep,
		Description: utils.ToPtr("roster consistency sweep found duplicated member ids"),
		Metadata:    meta,
		Success:     utils.ToPtr(true),
		CreatedAt:   utils.UTCNow(),
	}
	if err := s.auditRepo.Save(ctx, entry); err != nil {
		s.logger.Printf("sweep: failed to record sweep result: %v", err)
	}
}

// storeSummary caches the last sweep result for the back office
func (s *ConsistencySweep) storeSummary(ctx context.Context, duplicates []string) {
	if s.cache == nil {
		return
	}

	summary, _ := json.Marshal(map[string]any{
		"ran_at":               utils.UTCNow().Format(time.RFC3339),
		"duplicate_member_ids": duplicates,
		"count":                len(duplicates),
	})
	if err := s.cache.Set(ctx, sweepSummaryKey, summary, 48*time.Hour).Err(); err != nil {
		s.logger.Printf("sweep: failed to cache sweep summary: %v", err)
	}
}
