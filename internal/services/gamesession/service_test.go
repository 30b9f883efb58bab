package gamesession_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mocknarrative "github.com/mythgate/dungeonmind/internal/clients/narrative/mock"
	"github.com/mythgate/dungeonmind/internal/dice"
	"github.com/mythgate/dungeonmind/internal/entities"
	dmerr "github.com/mythgate/dungeonmind/internal/errors"
	"github.com/mythgate/dungeonmind/internal/repositories/gamesessions"
	"github.com/mythgate/dungeonmind/internal/services/gamesession"
	"github.com/mythgate/dungeonmind/internal/services/narrator"
	"github.com/mythgate/dungeonmind/internal/services/party"
)

type fixture struct {
	svc    gamesession.Service
	repo   gamesessions.Repository
	gen    *mocknarrative.MockGenerator
	roller *dice.MockRoller
}

func newFixture(t *testing.T, voice *fakeSynthesizer) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockGen := mocknarrative.NewMockGenerator(ctrl)

	repo := gamesessions.NewInMemoryRepository()

	partySvc := party.NewService(&party.ServiceConfig{
		Roller: dice.NewSeededRoller(11),
	})

	narratorSvc := narrator.NewService(&narrator.ServiceConfig{
		Generator: mockGen,
		Random:    rand.New(rand.NewSource(11)),
		Timeout:   time.Second,
	})

	roller := dice.NewMockRoller()

	cfg := &gamesession.ServiceConfig{
		Repository: repo,
		Party:      partySvc,
		Narrator:   narratorSvc,
		Roller:     roller,
		Random:     rand.New(rand.NewSource(11)),
	}
	if voice != nil {
		cfg.Voice = voice
	}

	return &fixture{
		svc:    gamesession.NewService(cfg),
		repo:   repo,
		gen:    mockGen,
		roller: roller,
	}
}

// endsMidTurn deletes the session right before every update, simulating an
// end racing a turn in flight.
type endsMidTurn struct {
	gamesessions.Repository
}

func (r *endsMidTurn) Update(ctx context.Context, session *entities.Session) error {
	_ = r.Repository.Delete(ctx, session.ID)
	return r.Repository.Update(ctx, session)
}

type fakeSynthesizer struct {
	calls int
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, voiceID, text string) (string, error) {
	f.calls++
	return "audio/" + voiceID + ".mp3", nil
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t, nil)

	out, err := f.svc.CreateSession(context.Background(), &gamesession.CreateSessionInput{
		HumanName: "Aria",
	})
	require.NoError(t, err)

	session := out.Session
	assert.Len(t, session.TurnOrder, 5)
	assert.Equal(t, "Aria", session.TurnOrder[0])
	assert.Equal(t, 0, session.CurrentTurnIndex)
	assert.Equal(t, entities.SessionStateActive, session.State)
	assert.Len(t, session.Companions, 4)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, out.Opening.Title, session.CampaignTitle)
	assert.Equal(t, out.Opening.Description, session.CurrentScene)
	assert.Contains(t, out.Welcome, "Aria")

	// Persisted
	stored, err := f.repo.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.TurnOrder, stored.TurnOrder)
}

func TestCreateSession_RequiresName(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.CreateSession(context.Background(), &gamesession.CreateSessionInput{})
	require.Error(t, err)
	assert.True(t, dmerr.IsInvalidArgument(err))
}

func TestProcessTurn_EndToEnd(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("The goblin snarls and readies its rusty blade.", nil).AnyTimes()

	created, err := f.svc.CreateSession(ctx, &gamesession.CreateSessionInput{HumanName: "Aria"})
	require.NoError(t, err)

	outcome, err := f.svc.ProcessTurn(ctx, &gamesession.ProcessTurnInput{
		SessionID:  created.Session.ID,
		PlayerName: "Aria",
		Action:     "I attack the goblin",
	})
	require.NoError(t, err)

	assert.Equal(t, "Aria", outcome.HumanTurn.PlayerName)
	assert.Equal(t, entities.PlayerTypeHuman, outcome.HumanTurn.PlayerType)
	assert.Len(t, outcome.Reactions, 4)
	assert.Equal(t, entities.PlayerTypeNarrator, outcome.DMTurn.PlayerType)
	assert.Contains(t, outcome.DMTurn.Dialogue, "goblin snarls")
	assert.Equal(t, 1, outcome.TurnNumber)
	assert.Equal(t, created.Session.TurnOrder[1], outcome.CurrentTurn)

	// Stats aggregate the default roster: 120+80+90+100
	assert.Equal(t, 390, outcome.PartyStats.HP)
	assert.Equal(t, 390, outcome.PartyStats.MaxHP)
	assert.Equal(t, 3, outcome.PartyStats.Level)

	// 1 human + 4 companion records persisted; narration is not history
	stored, err := f.repo.Get(ctx, created.Session.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Turns, 5)
	assert.Equal(t, 1, stored.CurrentTurnIndex)
	assert.Equal(t, 1, stored.TotalTurns)

	// Each companion got exactly one record this round
	seen := map[string]int{}
	for _, turn := range stored.Turns[1:] {
		assert.Equal(t, entities.PlayerTypeCompanion, turn.PlayerType)
		seen[turn.PlayerName]++
	}
	assert.Len(t, seen, 4)
}

func TestProcessTurn_AdvancesModulo(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("Onward.", nil).AnyTimes()

	created, err := f.svc.CreateSession(ctx, &gamesession.CreateSessionInput{HumanName: "Aria"})
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		_, err := f.svc.ProcessTurn(ctx, &gamesession.ProcessTurnInput{
			SessionID:  created.Session.ID,
			PlayerName: "Aria",
			Action:     "press on",
		})
		require.NoError(t, err)
	}

	stored, err := f.repo.Get(ctx, created.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, 7%5, stored.CurrentTurnIndex)
	assert.Equal(t, 7, stored.TotalTurns)
}

func TestProcessTurn_CheckActionAttachesRoll(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("The lock clicks open.", nil).AnyTimes()

	created, err := f.svc.CreateSession(ctx, &gamesession.CreateSessionInput{HumanName: "Aria"})
	require.NoError(t, err)

	f.roller.SetNextRoll(14)
	outcome, err := f.svc.ProcessTurn(ctx, &gamesession.ProcessTurnInput{
		SessionID:  created.Session.ID,
		PlayerName: "Aria",
		Action:     "I attempt to pick the lock",
	})
	require.NoError(t, err)

	require.Len(t, outcome.DMTurn.Rolls, 1)
	roll := outcome.DMTurn.Rolls[0]
	assert.Equal(t, "1d20", roll.Notation)
	assert.Equal(t, 14, roll.Total)

	// Plain actions roll nothing.
	outcome, err = f.svc.ProcessTurn(ctx, &gamesession.ProcessTurnInput{
		SessionID:  created.Session.ID,
		PlayerName: "Aria",
		Action:     "I open the door",
	})
	require.NoError(t, err)
	assert.Empty(t, outcome.DMTurn.Rolls)
}

func TestProcessTurn_UnknownSession(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.ProcessTurn(context.Background(), &gamesession.ProcessTurnInput{
		SessionID:  "missing",
		PlayerName: "Aria",
		Action:     "look around",
	})
	require.Error(t, err)
	assert.True(t, dmerr.IsNotFound(err))
}

func TestProcessTurn_NarratorFailureLeavesSessionUntouched(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.CreateSession(ctx, &gamesession.CreateSessionInput{HumanName: "Aria"})
	require.NoError(t, err)

	// Analysis falls back, render fails hard
	f.gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", dmerr.Unavailable("model overloaded")).Times(2)

	_, err = f.svc.ProcessTurn(ctx, &gamesession.ProcessTurnInput{
		SessionID:  created.Session.ID,
		PlayerName: "Aria",
		Action:     "I attack the goblin",
	})
	require.Error(t, err)
	assert.True(t, dmerr.IsUnavailable(err))

	// The failed cycle persisted nothing
	stored, err := f.repo.Get(ctx, created.Session.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Turns)
	assert.Equal(t, 0, stored.CurrentTurnIndex)
	assert.Equal(t, 0, stored.TotalTurns)
}

func TestProcessTurn_EndRaceDropsWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockGen := mocknarrative.NewMockGenerator(ctrl)
	mockGen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("The path fades behind you.", nil).AnyTimes()

	repo := &endsMidTurn{Repository: gamesessions.NewInMemoryRepository()}

	svc := gamesession.NewService(&gamesession.ServiceConfig{
		Repository: repo,
		Party:      party.NewService(&party.ServiceConfig{Roller: dice.NewSeededRoller(11)}),
		Narrator: narrator.NewService(&narrator.ServiceConfig{
			Generator: mockGen,
			Random:    rand.New(rand.NewSource(11)),
			Timeout:   time.Second,
		}),
		Random: rand.New(rand.NewSource(11)),
	})

	ctx := context.Background()
	created, err := svc.CreateSession(ctx, &gamesession.CreateSessionInput{HumanName: "Aria"})
	require.NoError(t, err)

	// The turn completes against its snapshot.
	outcome, err := svc.ProcessTurn(ctx, &gamesession.ProcessTurnInput{
		SessionID:  created.Session.ID,
		PlayerName: "Aria",
		Action:     "press on",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.TurnNumber)

	// The write was dropped, never re-inserted.
	_, err = repo.Get(ctx, created.Session.ID)
	require.Error(t, err)
	assert.True(t, dmerr.IsNotFound(err))
}

func TestProcessTurn_CompletedSessionRejectsActions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.CreateSession(ctx, &gamesession.CreateSessionInput{HumanName: "Aria"})
	require.NoError(t, err)

	stored, err := f.repo.Get(ctx, created.Session.ID)
	require.NoError(t, err)
	require.True(t, stored.Complete())
	require.NoError(t, f.repo.Update(ctx, stored))

	_, err = f.svc.ProcessTurn(ctx, &gamesession.ProcessTurnInput{
		SessionID:  created.Session.ID,
		PlayerName: "Aria",
		Action:     "look around",
	})
	require.Error(t, err)
	assert.True(t, dmerr.IsInvalidArgument(err))
}

func TestProcessTurn_VoiceModeAttachesAudio(t *testing.T) {
	synth := &fakeSynthesizer{}
	f := newFixture(t, synth)
	ctx := context.Background()

	f.gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("The tavern falls silent.", nil).AnyTimes()

	created, err := f.svc.CreateSession(ctx, &gamesession.CreateSessionInput{
		HumanName: "Aria",
		VoiceMode: true,
	})
	require.NoError(t, err)

	outcome, err := f.svc.ProcessTurn(ctx, &gamesession.ProcessTurnInput{
		SessionID:  created.Session.ID,
		PlayerName: "Aria",
		Action:     "I greet the room",
	})
	require.NoError(t, err)

	// 4 companions + the narrator
	assert.Equal(t, 5, synth.calls)
	assert.Equal(t, "audio/dm_narrator.mp3", outcome.DMTurn.AudioFile)

	stored, err := f.repo.Get(ctx, created.Session.ID)
	require.NoError(t, err)
	for _, turn := range stored.Turns[1:] {
		assert.NotEmpty(t, turn.AudioFile)
	}
}

func TestEndSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.CreateSession(ctx, &gamesession.CreateSessionInput{HumanName: "Aria"})
	require.NoError(t, err)

	summary, err := f.svc.EndSession(ctx, created.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Session.ID, summary.SessionID)
	assert.Equal(t, "Aria", summary.HumanName)

	_, err = f.svc.GetSessionInfo(ctx, created.Session.ID)
	require.Error(t, err)
	assert.True(t, dmerr.IsNotFound(err))

	_, err = f.svc.EndSession(ctx, created.Session.ID)
	require.Error(t, err)
	assert.True(t, dmerr.IsNotFound(err))
}

func TestSetVoiceMode_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.CreateSession(ctx, &gamesession.CreateSessionInput{HumanName: "Aria"})
	require.NoError(t, err)

	require.NoError(t, f.svc.SetVoiceMode(ctx, created.Session.ID, true))
	require.NoError(t, f.svc.SetVoiceMode(ctx, created.Session.ID, true))

	info, err := f.svc.GetSessionInfo(ctx, created.Session.ID)
	require.NoError(t, err)
	assert.True(t, info.Session.VoiceMode)

	require.NoError(t, f.svc.SetVoiceMode(ctx, created.Session.ID, false))
	info, err = f.svc.GetSessionInfo(ctx, created.Session.ID)
	require.NoError(t, err)
	assert.False(t, info.Session.VoiceMode)
}

func TestGetSessionInfo(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.CreateSession(ctx, &gamesession.CreateSessionInput{HumanName: "Aria"})
	require.NoError(t, err)

	info, err := f.svc.GetSessionInfo(ctx, created.Session.ID)
	require.NoError(t, err)

	assert.Equal(t, "Aria", info.CurrentTurn)
	assert.Equal(t, 390, info.Stats.HP)
	assert.Equal(t, "Forest Clearing", info.Stats.Location)
	assert.Equal(t, 150, info.Stats.Gold)
	assert.Equal(t, 0, info.Stats.TotalTurns)
}
