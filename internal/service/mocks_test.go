package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/teampulse/pulse-service/internal/domain"
	"github.com/teampulse/pulse-service/internal/report"
	"github.com/teampulse/pulse-service/internal/repository"
)

type TrackerClientMock struct {
	mock.Mock
}

var _ TrackerClient = (*TrackerClientMock)(nil)

func (m *TrackerClientMock) GetCurrentUser(ctx context.Context) (*domain.TrackerUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.TrackerUser), args.Error(1)
}

func (m *TrackerClientMock) GetOrganization(ctx context.Context) (*domain.Organization, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *TrackerClientMock) GetAllUsers(ctx context.Context) ([]domain.TrackerUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.TrackerUser), args.Error(1)
}

func (m *TrackerClientMock) GetIssuesForUser(ctx context.Context, userID string, cutoff time.Time) ([]domain.Issue, error) {
	args := m.Called(ctx, userID, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Issue), args.Error(1)
}

func (m *TrackerClientMock) GetAllAssignedIssues(ctx context.Context, cutoff time.Time) ([]domain.Issue, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Issue), args.Error(1)
}

type MessagingClientMock struct {
	mock.Mock
}

var _ MessagingClient = (*MessagingClientMock)(nil)

func (m *MessagingClientMock) ListUsers(ctx context.Context) ([]domain.MessagingUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.MessagingUser), args.Error(1)
}

func (m *MessagingClientMock) SendDirectMessage(ctx context.Context, userID, text string) (string, error) {
	args := m.Called(ctx, userID, text)
	return args.String(0), args.Error(1)
}

type SourceHostClientMock struct {
	mock.Mock
}

var _ SourceHostClient = (*SourceHostClientMock)(nil)

func (m *SourceHostClientMock) ListMembers(ctx context.Context) ([]domain.OrgMember, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.OrgMember), args.Error(1)
}

type UserLinkRepositoryMock struct {
	mock.Mock
}

var _ repository.UserLinkRepository = (*UserLinkRepositoryMock)(nil)

func (m *UserLinkRepositoryMock) UpsertLinks(ctx context.Context, links []domain.UserLink) (int, int, error) {
	args := m.Called(ctx, links)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *UserLinkRepositoryMock) DeactivateMissing(ctx context.Context, presentIDs []string) ([]string, error) {
	args := m.Called(ctx, presentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

func (m *UserLinkRepositoryMock) GetBySlackID(ctx context.Context, slackUserID string) (*domain.UserLink, error) {
	args := m.Called(ctx, slackUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.UserLink), args.Error(1)
}

func (m *UserLinkRepositoryMock) ListRecipients(ctx context.Context) ([]domain.UserLink, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.UserLink), args.Error(1)
}

func (m *UserLinkRepositoryMock) SetOptedIn(ctx context.Context, slackUserID string, optedIn bool) (*domain.UserLink, error) {
	args := m.Called(ctx, slackUserID, optedIn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.UserLink), args.Error(1)
}

type ScheduleRepositoryMock struct {
	mock.Mock
}

var _ repository.ScheduleRepository = (*ScheduleRepositoryMock)(nil)

func (m *ScheduleRepositoryMock) Upsert(ctx context.Context, schedule domain.CooldownSchedule) (*domain.CooldownSchedule, error) {
	args := m.Called(ctx, schedule)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.CooldownSchedule), args.Error(1)
}

func (m *ScheduleRepositoryMock) GetByUserID(ctx context.Context, userID string) (*domain.CooldownSchedule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.CooldownSchedule), args.Error(1)
}

type DeliveryLogRepositoryMock struct {
	mock.Mock
}

var _ repository.DeliveryLogRepository = (*DeliveryLogRepositoryMock)(nil)

func (m *DeliveryLogRepositoryMock) Insert(ctx context.Context, entry domain.DeliveryLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *DeliveryLogRepositoryMock) ListRecent(ctx context.Context, limit int) ([]domain.DeliveryLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.DeliveryLogEntry), args.Error(1)
}

type ReportServiceMock struct {
	mock.Mock
}

var _ ReportService = (*ReportServiceMock)(nil)

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
