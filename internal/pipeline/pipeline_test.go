package pipeline

import (
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PancyStudios/VeilleBot/internal/xp"
	"github.com/PancyStudios/VeilleBot/pkg/censor"
	"github.com/PancyStudios/VeilleBot/pkg/database"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/errors"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
	"github.com/PancyStudios/VeilleBot/pkg/mqtt"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Options{Console: io.Discard})
	os.Exit(m.Run())
}

const (
	selfID     = "bot"
	intakeID   = "veille"
	announceID = "general"
	guildID    = "guild"
)

type sentMessage struct {
	channelID string
	content   string
}

type fakeSession struct {
	mu        sync.Mutex
	calls     []string
	sent      []sentMessage
	deleted   []string
	reactions []string
	roleAdds  []string
	members   map[string]*discordgo.Member
	roles     []*discordgo.Role
	deleteErr error
	reactErr  error
	nextID    int
}

func (f *fakeSession) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("send")
	f.sent = append(f.sent, sentMessage{channelID, content})
	f.nextID++
	return &discordgo.Message{ID: "sent-" + strconv.Itoa(f.nextID), ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelMessageSendEmbed(channelID string, _ *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageDelete(_, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeSession) ChannelMessages(string, int, string, string, string, ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	return nil, nil
}

func (f *fakeSession) ChannelMessagesBulkDelete(string, []string, ...discordgo.RequestOption) error {
	return nil
}

func (f *fakeSession) ChannelFileSend(string, string, io.Reader, ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{}, nil
}

func (f *fakeSession) UserChannelPermissions(string, string, ...discordgo.RequestOption) (int64, error) {
	return discordgo.PermissionAll, nil
}

func (f *fakeSession) GuildMember(_, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	if m, ok := f.members[userID]; ok {
		return m, nil
	}
	return nil, stderrors.New("HTTP 404 Not Found, Unknown Member")
}

func (f *fakeSession) MessageReactionAdd(_, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("react")
	if f.reactErr != nil {
		return f.reactErr
	}
	f.reactions = append(f.reactions, messageID+":"+emojiID)
	return nil
}

func (f *fakeSession) GuildMemberRoleAdd(_, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.roleAdds = append(f.roleAdds, userID+":"+roleID)
	return nil
}

func (f *fakeSession) GuildRoles(string, ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles, nil
}

type fakeDispatcher struct {
	calls int
	known bool
}

func (d *fakeDispatcher) Dispatch(discord.Session, *discordgo.Message) bool {
	d.calls++
	return d.known
}

type fakePublisher struct {
	levelUps []mqtt.LevelUpEvent
	censored []mqtt.CensoredEvent
}

func (p *fakePublisher) PublishLevelUp(ev mqtt.LevelUpEvent)   { p.levelUps = append(p.levelUps, ev) }
func (p *fakePublisher) PublishCensored(ev mqtt.CensoredEvent) { p.censored = append(p.censored, ev) }

type harness struct {
	p         *Pipeline
	session   *fakeSession
	dispatch  *fakeDispatcher
	publisher *fakePublisher
	tracker   *xp.Tracker
	scheduled []func()
	delays    []time.Duration
}

func newHarness(t *testing.T, seed map[string]int) *harness {
	t.Helper()
	store := database.NewFileStore[int]("xp", filepath.Join(t.TempDir(), "xp_data.json"))
	if seed != nil {
		require.NoError(t, store.Save(seed))
	}

	h := &harness{
		session:   &fakeSession{members: map[string]*discordgo.Member{}},
		dispatch:  &fakeDispatcher{},
		publisher: &fakePublisher{},
		tracker:   xp.NewTracker(store, 100),
	}
	h.p = New(Config{
		IntakeChannelID:   intakeID,
		AnnounceChannelID: announceID,
		WelcomeChannelID:  announceID,
		ReaderRoleName:    "Reader",
		ValidationEmoji:   "✅",
		XPPerClick:        10,
		NoticeTTL:         5 * time.Second,
	}, censor.New([]string{"con"}), h.tracker, h.dispatch, h.publisher)
	h.p.afterFunc = func(d time.Duration, f func()) {
		h.delays = append(h.delays, d)
		h.scheduled = append(h.scheduled, f)
	}
	return h
}

func msg(channelID, authorID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "m1",
		ChannelID: channelID,
		GuildID:   guildID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: "alice"},
	}
}

func reaction(channelID, userID, emoji string) *discordgo.MessageReaction {
	return &discordgo.MessageReaction{
		UserID:    userID,
		MessageID: "m1",
		ChannelID: channelID,
		GuildID:   guildID,
		Emoji:     discordgo.Emoji{Name: emoji},
	}
}

func TestCensoredMessageStopsThePipeline(t *testing.T) {
	h := newHarness(t, nil)
	h.dispatch.known = true

	out := h.p.HandleMessage(h.session, selfID, msg(intakeID, "u1", "tu es con."))

	assert.Equal(t, MessageOutcome{Censored: true}, out)
	assert.Equal(t, []string{"m1"}, h.session.deleted)
	assert.Equal(t, 0, h.dispatch.calls, "no command dispatch after censoring")
	assert.Empty(t, h.session.reactions, "no auto-reaction after censoring")
	assert.Equal(t, 0, h.tracker.Count(), "no XP after censoring")

	require.Len(t, h.session.sent, 2)
	repost := h.session.sent[0]
	assert.Equal(t, intakeID, repost.channelID)
	assert.True(t, strings.HasPrefix(repost.content, "🤐 **alice** : tu es "))
	assert.True(t, strings.HasSuffix(repost.content, "."))
	assert.NotContains(t, repost.content, "con.")
	assert.Contains(t, h.session.sent[1].content, "<@u1>")

	require.Len(t, h.publisher.censored, 1)
	assert.Equal(t, "u1", h.publisher.censored[0].UserID)
}

func TestCensorNoticeDeletesItself(t *testing.T) {
	h := newHarness(t, nil)
	h.p.HandleMessage(h.session, selfID, msg("other", "u1", "quel con"))

	require.Len(t, h.scheduled, 1)
	assert.Equal(t, 5*time.Second, h.delays[0])
	assert.Equal(t, []string{"m1"}, h.session.deleted)

	h.scheduled[0]()
	require.Len(t, h.session.deleted, 2)
	assert.Equal(t, "sent-2", h.session.deleted[1])
}

func TestCensorDeleteFailureStillStops(t *testing.T) {
	h := newHarness(t, nil)
	h.session.deleteErr = stderrors.New("missing permissions")
	h.dispatch.known = true

	out := h.p.HandleMessage(h.session, selfID, msg(intakeID, "u1", "con"))

	assert.True(t, out.Censored)
	assert.Empty(t, h.session.sent, "nothing reposted when the original stays")
	assert.Equal(t, 0, h.dispatch.calls)
	assert.Empty(t, h.session.reactions)
}

func TestCleanMessageDispatchesThenReacts(t *testing.T) {
	h := newHarness(t, nil)
	h.dispatch.known = true

	out := h.p.HandleMessage(h.session, selfID, msg(intakeID, "u1", "!level"))

	assert.Equal(t, MessageOutcome{Command: true, Reacted: true}, out)
	assert.Equal(t, 1, h.dispatch.calls)
	assert.Equal(t, []string{"m1:✅"}, h.session.reactions)
	assert.Empty(t, h.session.deleted)
}

func TestAutoReactOnlyInIntakeAndNotForSelf(t *testing.T) {
	h := newHarness(t, nil)

	out := h.p.HandleMessage(h.session, selfID, msg("other", "u1", "un article"))
	assert.False(t, out.Reacted)

	out = h.p.HandleMessage(h.session, selfID, msg(intakeID, selfID, "un article"))
	assert.False(t, out.Reacted)

	assert.Empty(t, h.session.reactions)
	assert.Equal(t, 2, h.dispatch.calls)
}

func TestAutoReactFailureIsNotEscalated(t *testing.T) {
	h := newHarness(t, nil)
	h.session.reactErr = stderrors.New("rate limited")

	out := h.p.HandleMessage(h.session, selfID, msg(intakeID, "u1", "https://go.dev/blog"))
	assert.False(t, out.Reacted)
	assert.False(t, out.Censored)
}

func TestBotOwnMessagesAreNotCensored(t *testing.T) {
	h := newHarness(t, nil)
	out := h.p.HandleMessage(h.session, selfID, msg("other", selfID, "con"))
	assert.False(t, out.Censored)
	assert.Empty(t, h.session.deleted)
}

func TestReactionFirstClick(t *testing.T) {
	h := newHarness(t, nil)

	out, err := h.p.HandleReactionAdd(h.session, selfID, reaction(intakeID, "u1", "✅"))
	require.NoError(t, err)

	assert.Equal(t, ReactionOutcome{Applied: true, Points: 10}, out)
	assert.Equal(t, 10, h.tracker.Points("u1"))
	assert.Empty(t, h.session.sent)
}

func TestReactionLevelUpAnnounces(t *testing.T) {
	h := newHarness(t, map[string]int{"u1": 95})
	h.session.members["u1"] = &discordgo.Member{User: &discordgo.User{ID: "u1"}}

	out, err := h.p.HandleReactionAdd(h.session, selfID, reaction(intakeID, "u1", "✅"))
	require.NoError(t, err)

	assert.Equal(t, ReactionOutcome{Applied: true, Points: 105, LeveledUp: true, NewLevel: 1, Notified: true}, out)
	require.Len(t, h.session.sent, 1)
	assert.Equal(t, announceID, h.session.sent[0].channelID)
	assert.Contains(t, h.session.sent[0].content, "<@!u1>")
	assert.Contains(t, h.session.sent[0].content, "**Niveau 1**")

	require.Len(t, h.publisher.levelUps, 1)
	assert.Equal(t, 1, h.publisher.levelUps[0].Level)
}

func TestReactionLevelUpUnknownMemberIsSilent(t *testing.T) {
	h := newHarness(t, map[string]int{"u1": 95})

	out, err := h.p.HandleReactionAdd(h.session, selfID, reaction(intakeID, "u1", "✅"))
	require.NoError(t, err)

	assert.True(t, out.LeveledUp)
	assert.False(t, out.Notified)
	assert.Empty(t, h.session.sent)
	assert.Equal(t, 105, h.tracker.Points("u1"))
}

func TestReactionFilter(t *testing.T) {
	h := newHarness(t, nil)

	for _, r := range []*discordgo.MessageReaction{
		reaction("other", "u1", "✅"),
		reaction(intakeID, "u1", "👍"),
		reaction(intakeID, selfID, "✅"),
	} {
		out, err := h.p.HandleReactionAdd(h.session, selfID, r)
		require.NoError(t, err)
		assert.False(t, out.Applied)
	}
	assert.Equal(t, 0, h.tracker.Count())
}

func TestReactionPersistFailure(t *testing.T) {
	h := newHarness(t, nil)
	broken := database.NewFileStore[int]("xp", filepath.Join(t.TempDir(), "missing", "xp.json"))
	h.p.xp = xp.NewTracker(broken, 100)

	out, err := h.p.HandleReactionAdd(h.session, selfID, reaction(intakeID, "u1", "✅"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindIO))
	assert.False(t, out.Applied)
}

func TestMemberJoin(t *testing.T) {
	h := newHarness(t, nil)
	h.session.roles = []*discordgo.Role{{ID: "r0", Name: "Admin"}, {ID: "r1", Name: "Reader"}}

	out := h.p.HandleMemberJoin(h.session, &discordgo.Member{
		GuildID: guildID,
		User:    &discordgo.User{ID: "u9", Username: "newbie"},
	})

	assert.Equal(t, JoinOutcome{RoleAssigned: true, Welcomed: true}, out)
	assert.Equal(t, []string{"u9:r1"}, h.session.roleAdds)
	require.Len(t, h.session.sent, 1)
	assert.Contains(t, h.session.sent[0].content, "Bienvenue <@!u9>")
	assert.Contains(t, h.session.sent[0].content, "**Reader**")
	assert.Contains(t, h.session.sent[0].content, "<#veille>")
}

func TestMemberJoinWithoutRole(t *testing.T) {
	h := newHarness(t, nil)

	out := h.p.HandleMemberJoin(h.session, &discordgo.Member{
		GuildID: guildID,
		User:    &discordgo.User{ID: "u9", Username: "newbie"},
	})

	assert.Equal(t, JoinOutcome{Welcomed: true}, out)
	assert.Empty(t, h.session.roleAdds)
	assert.NotContains(t, h.session.sent[0].content, "rôle")
}
