package http

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/teampulse/pulse-service/internal/cooldown"
	"github.com/teampulse/pulse-service/internal/domain"
	"github.com/teampulse/pulse-service/internal/report"
	"github.com/teampulse/pulse-service/internal/service"
)

type ReportServiceMock struct {
	mock.Mock
}

var _ service.ReportService = (*ReportServiceMock)(nil)

func (m *ReportServiceMock) Generate(ctx context.Context, userID string) (*report.Result, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*report.Result), args.Error(1)
}

func (m *ReportServiceMock) Send(ctx context.Context, userID string) (*domain.DeliveryResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DeliveryResult), args.Error(1)
}

type DeliveryServiceMock struct {
	mock.Mock
}

var _ service.DeliveryService = (*DeliveryServiceMock)(nil)

func (m *DeliveryServiceMock) DeliverToAll(ctx context.Context) ([]domain.DeliveryResult, *domain.DeliverySummary, error) {
	args := m.Called(ctx)

	var results []domain.DeliveryResult
	if args.Get(0) != nil {
		results = args.Get(0).([]domain.DeliveryResult)
	}

	var summary *domain.DeliverySummary
	if args.Get(1) != nil {
		summary = args.Get(1).(*domain.DeliverySummary)
	}

	return results, summary, args.Error(2)
}

type SyncServiceMock struct {
	mock.Mock
}

var _ service.SyncService = (*SyncServiceMock)(nil)

func (m *SyncServiceMock) SyncUsers(ctx context.Context) (*domain.SyncSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.SyncSummary), args.Error(1)
}

type AdminServiceMock struct {
	mock.Mock
}

var _ service.AdminService = (*AdminServiceMock)(nil)

func (m *AdminServiceMock) UpsertCooldown(ctx context.Context, userID string, nextStart time.Time, durationWeeks int) (*domain.CooldownSchedule, error) {
	args := m.Called(ctx, userID, nextStart, durationWeeks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.CooldownSchedule), args.Error(1)
}

func (m *AdminServiceMock) GetCooldown(ctx context.Context, userID string) (*domain.CooldownSchedule, cooldown.Status, error) {
	args := m.Called(ctx, userID)

	var schedule *domain.CooldownSchedule
	if args.Get(0) != nil {
		schedule = args.Get(0).(*domain.CooldownSchedule)
	}

	return schedule, args.Get(1).(cooldown.Status), args.Error(2)
}

func (m *AdminServiceMock) SetOptedIn(ctx context.Context, userID string, optedIn bool) (*domain.UserLink, error) {
	args := m.Called(ctx, userID, optedIn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.UserLink), args.Error(1)
}

func (m *AdminServiceMock) RecentDeliveries(ctx context.Context, limit int) ([]domain.DeliveryLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.DeliveryLogEntry), args.Error(1)
}
