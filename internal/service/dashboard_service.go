package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"protonshop/internal/repository"
	"protonshop/internal/shop"
	"protonshop/internal/ws"

	"github.com/pkg/errors"
)

type DashboardService interface {
	Snapshot(ctx context.Context) (*shop.DashboardSnapshot, error)
}

type dashboardService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	visitRepo   repository.VisitRepository
	opts        []shop.DashboardOption
	log         *slog.Logger
}

func NewDashboardService(oRepo repository.OrderRepository, pRepo repository.ProductRepository, vRepo repository.VisitRepository, log *slog.Logger, opts ...shop.DashboardOption) DashboardService {
	return &dashboardService{
		orderRepo:   oRepo,
		productRepo: pRepo,
		visitRepo:   vRepo,
		opts:        opts,
		log:         log,
	}
}

// Snapshot fetches everything fresh and aggregates it. The visit count is
// secondary: when it fails the snapshot reports zero visits.
func (s *dashboardService) Snapshot(ctx context.Context) (*shop.DashboardSnapshot, error) {
	orders, err := s.orderRepo.FindAll(ctx, true)
	if err != nil {
		return nil, errors.Wrap(err, "dashboard orders")
	}
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "dashboard products")
	}

	visits, err := s.visitRepo.Count(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "visit count unavailable", slog.String("error", err.Error()))
		visits = 0
	}

	snap := shop.ComputeDashboard(orders, products, visits, s.opts...)
	return &snap, nil
}

// DashboardPoller refreshes the dashboard on a timer and tells connected
// admins to reload. At most one ticker is armed at a time. A manual Refresh
// may race the ticker; whichever finishes last is kept.
type DashboardPoller struct {
	svc       DashboardService
	publisher ws.Publisher
	interval  time.Duration
	log       *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	latest *shop.DashboardSnapshot
	at     time.Time
}

func NewDashboardPoller(svc DashboardService, publisher ws.Publisher, interval time.Duration, log *slog.Logger) *DashboardPoller {
	return &DashboardPoller{svc: svc, publisher: publisher, interval: interval, log: log}
}

// Start arms the ticker and refreshes once immediately. It reports false when
// the poller is already running.
func (p *DashboardPoller) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go p.loop(ctx, done)
	return true
}

// Stop disarms the ticker and waits for the loop to exit.
func (p *DashboardPoller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *DashboardPoller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refreshLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refreshLogged(ctx)
		}
	}
}

func (p *DashboardPoller) refreshLogged(ctx context.Context) {
	if _, err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
		p.log.ErrorContext(ctx, "dashboard refresh failed", slog.String("error", err.Error()))
	}
}

// Refresh recomputes the snapshot, keeps it as the latest and broadcasts a
// dashboard_refresh event. Figures are not broadcast; clients fetch them.
func (p *DashboardPoller) Refresh(ctx context.Context) (*shop.DashboardSnapshot, error) {
	snap, err := p.svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p.mu.Lock()
	p.latest = snap
	p.at = now
	p.mu.Unlock()

	p.publisher.Publish(ws.EventDashboardRefresh, map[string]any{"generated_at": now})
	return snap, nil
}

// Latest returns the most recent snapshot and when it was computed, or nil.
func (p *DashboardPoller) Latest() (*shop.DashboardSnapshot, time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.at
}
