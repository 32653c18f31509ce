package bank

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Yureien/PinocchioBot/models"
	"github.com/Yureien/PinocchioBot/service"
)

type mockMemberService struct {
	mock.Mock
}

func (m *mockMemberService) GetOrCreateMember(ctx context.Context, discordID int64) (*models.Member, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *mockMemberService) Wallet(ctx context.Context, discordID int64) (int64, error) {
	args := m.Called(ctx, discordID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMemberService) Credit(ctx context.Context, discordID int64, amount int64, reason string) (int64, error) {
	args := m.Called(ctx, discordID, amount, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMemberService) Transfer(ctx context.Context, fromDiscordID, toDiscordID, amount int64) error {
	args := m.Called(ctx, fromDiscordID, toDiscordID, amount)
	return args.Error(0)
}

// stubTransport satisfies every REST call with an empty 200 so handlers can
// run against a real session without the network
type stubTransport struct{}

func (stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func newStubSession(t *testing.T) *discordgo.Session {
	session, err := discordgo.New("Bot test-token")
	require.NoError(t, err)
	session.Client = &http.Client{Transport: stubTransport{}}
	return session
}

func TestIsWeekend(t *testing.T) {
	saturday := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)

	assert.True(t, isWeekend(saturday))
	assert.True(t, isWeekend(sunday))
	assert.False(t, isWeekend(monday))
}

func TestInteractionUser(t *testing.T) {
	guildUser := &discordgo.User{ID: "1"}
	dmUser := &discordgo.User{ID: "2"}

	tests := []struct {
		name        string
		interaction *discordgo.InteractionCreate
		want        *discordgo.User
	}{
		{
			name: "guild interaction carries the user in Member",
			interaction: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
				Member: &discordgo.Member{User: guildUser},
			}},
			want: guildUser,
		},
		{
			name: "direct message carries the user in User",
			interaction: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
				User: dmUser,
			}},
			want: dmUser,
		},
		{
			name:        "neither set",
			interaction: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}},
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, interactionUser(tt.interaction))
		})
	}
}

func TestHandleCommand_WalletFromDirectMessage(t *testing.T) {
	members := new(mockMemberService)
	members.On("GetOrCreateMember", mock.Anything, int64(42)).
		Return(&models.Member{DiscordID: 42, Wallet: 100}, nil)

	feature := New(members, nil, nil, service.NewLockManager())
	session := newStubSession(t)

	// DM interactions arrive with Member unset and the invoker in User
	interaction := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:  discordgo.InteractionApplicationCommand,
		ID:    "interaction-1",
		Token: "interaction-token",
		User:  &discordgo.User{ID: "42", Username: "dm-user"},
		Data:  discordgo.ApplicationCommandInteractionData{Name: "wallet"},
	}}

	require.NotPanics(t, func() {
		feature.HandleCommand(session, interaction)
	})
	members.AssertExpectations(t)
}

func TestHandleCommand_DailyFromDirectMessage(t *testing.T) {
	rewards := new(mockRewardService)
	rewards.On("ClaimDaily", mock.Anything, int64(42)).
		Return(&models.RewardResult{Kind: models.RewardDaily, Amount: 300, NewBalance: 300}, nil)

	feature := New(new(mockMemberService), rewards, nil, service.NewLockManager())
	session := newStubSession(t)

	interaction := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:  discordgo.InteractionApplicationCommand,
		ID:    "interaction-2",
		Token: "interaction-token",
		User:  &discordgo.User{ID: "42", Username: "dm-user"},
		Data:  discordgo.ApplicationCommandInteractionData{Name: "daily"},
	}}

	require.NotPanics(t, func() {
		feature.HandleCommand(session, interaction)
	})
	rewards.AssertExpectations(t)
}

type mockRewardService struct {
	mock.Mock
}

func (m *mockRewardService) ClaimDaily(ctx context.Context, discordID int64) (*models.RewardResult, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RewardResult), args.Error(1)
}

func (m *mockRewardService) ClaimHourly(ctx context.Context, discordID int64) (*models.RewardResult, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RewardResult), args.Error(1)
}

func (m *mockRewardService) ClaimVote(ctx context.Context, discordID int64, weekend bool) (*models.RewardResult, error) {
	args := m.Called(ctx, discordID, weekend)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RewardResult), args.Error(1)
}

func (m *mockRewardService) NextClaim(ctx context.Context, discordID int64, kind models.RewardKind) (time.Duration, error) {
	args := m.Called(ctx, discordID, kind)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *mockRewardService) ConsumeRoll(ctx context.Context, guildID, memberID int64) error {
	args := m.Called(ctx, guildID, memberID)
	return args.Error(0)
}

func (m *mockRewardService) RollsLeft(ctx context.Context, guildID, memberID int64) (*models.RollsStatus, error) {
	args := m.Called(ctx, guildID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RollsStatus), args.Error(1)
}
