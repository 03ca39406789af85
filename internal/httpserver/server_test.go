package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/emode/internal/catalog"
	"github.com/robalobadob/emode/internal/config"
	"github.com/robalobadob/emode/internal/database"
	"github.com/robalobadob/emode/internal/game"
	"github.com/robalobadob/emode/internal/kv"
	"github.com/robalobadob/emode/internal/leaderboard"
	"github.com/robalobadob/emode/internal/progress"
	"github.com/robalobadob/emode/internal/sharecard"
)

var launch = time.Date(2025, time.July, 21, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	url    string
	shared *bytes.Buffer
	deps   Deps
}

// newTestServer runs the full stack one hour after launch: only day 1 is out.
func newTestServer(t *testing.T, share progress.Deliverer) *testEnv {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:      "test-secret",
		JWTExpiresDays: 1,
		CookieName:     "emode_token",
		AnonCookieName: "emode_anon",
		ClientOrigin:   "http://localhost:5173",
		Env:            "test",
	}

	db, err := database.OpenMigrated(database.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cat, err := catalog.Load("")
	require.NoError(t, err)
	msgs := progress.NewMessages(cat.Messages())
	pe := progress.NewEngine(
		progress.NewStore(kv.NewMemory(), msgs),
		progress.NewConfiguration(cat.LevelCounts()),
		msgs,
		launch,
		progress.WithClock(func() time.Time { return launch.Add(time.Hour) }),
	)
	board := leaderboard.NewStore(db)

	env := &testEnv{shared: &bytes.Buffer{}}
	if share == nil {
		share = progress.Chain{progress.WriterDeliverer{W: env.shared}}
	}
	env.deps = Deps{
		DB:          db,
		Catalog:     cat,
		Progress:    pe,
		Game:        game.New(cat, pe, board),
		Leaderboard: board,
		Share:       share,
		Card:        sharecard.Render,
	}

	ts := httptest.NewServer(New(cfg, env.deps).Router())
	t.Cleanup(ts.Close)
	env.url = ts.URL
	return env
}

// client is one browser: it keeps cookies between requests.
func (e *testEnv) client(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func do(t *testing.T, c *http.Client, method, url string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func solveDay1(t *testing.T, env *testEnv, c *http.Client) {
	t.Helper()
	for _, a := range []string{"42", "hello", "backwards"} {
		code, _ := do(t, c, http.MethodPost, env.url+"/days/1/answer", answerReq{Answer: a})
		require.Equal(t, http.StatusOK, code)
	}
}

func TestDiagnostics(t *testing.T) {
	env := newTestServer(t, nil)
	c := env.client(t)

	code, body := do(t, c, http.MethodGet, env.url+"/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	code, body = do(t, c, http.MethodGet, env.url+"/catalog", nil)
	assert.Equal(t, http.StatusOK, code)
	days := decode[[]catalogDay](t, body)
	require.Len(t, days, 7)
	assert.Equal(t, 3, days[0].Levels)
	assert.Equal(t, 300, days[0].MaxPoints)
	assert.NotContains(t, string(body), "backwards", "answers stay server side")

	code, _ = do(t, c, http.MethodGet, env.url+"/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAnonymousPlay(t *testing.T) {
	env := newTestServer(t, nil)
	c := env.client(t)

	code, body := do(t, c, http.MethodPost, env.url+"/days/1/begin", nil)
	require.Equal(t, http.StatusOK, code)
	b := decode[game.Briefing](t, body)
	assert.Equal(t, 1, b.Puzzle.Level)
	assert.False(t, b.Resumed)

	code, body = do(t, c, http.MethodPost, env.url+"/days/1/answer", answerReq{Answer: "wrong"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, game.OutcomeIncorrect, decode[game.Turn](t, body).Outcome)

	code, body = do(t, c, http.MethodPost, env.url+"/days/1/hint", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, decode[game.Hint](t, body).HintsUsed)

	solveDay1(t, env, c)

	code, body = do(t, c, http.MethodGet, env.url+"/progress", nil)
	require.Equal(t, http.StatusOK, code)
	p := decode[progress.GameProgress](t, body)
	assert.Equal(t, []progress.Day{1}, p.CompletedDays)
	assert.Equal(t, "Emode:", p.TotalDecodedMessage)
	assert.Equal(t, 265, *p.Stats(1).Score)

	code, body = do(t, c, http.MethodGet, env.url+"/days", nil)
	require.Equal(t, http.StatusOK, code)
	rows := decode[[]progress.DayStatus](t, body)
	require.Len(t, rows, 7)
	assert.Equal(t, progress.StateCompleted, rows[0].State)
	assert.Equal(t, progress.StateUnlocked, rows[1].State)
	assert.Equal(t, progress.StateLocked, rows[2].State)

	code, body = do(t, c, http.MethodGet, env.url+"/days/1", nil)
	require.Equal(t, http.StatusOK, code)
	d := decode[dayRes](t, body)
	assert.Equal(t, 4, d.Stats.Tries)
	assert.Equal(t, 265, d.Status.Score)

	code, body = do(t, c, http.MethodGet, env.url+"/stats", nil)
	require.Equal(t, http.StatusOK, code)
	st := decode[statsRes](t, body)
	assert.Equal(t, 1, st.Stats.CompletedDays)
	assert.Len(t, st.Cards, 4)
	require.NotNil(t, st.NextUnlock)
	assert.True(t, launch.Add(24*time.Hour).Equal(*st.NextUnlock))

	// a second browser starts from nothing
	code, body = do(t, env.client(t), http.MethodGet, env.url+"/progress", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[progress.GameProgress](t, body).CompletedDays)
}

func TestPlayErrors(t *testing.T) {
	env := newTestServer(t, nil)
	c := env.client(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"zero day", http.MethodPost, "/days/0/begin", http.StatusBadRequest},
		{"past last day", http.MethodGet, "/days/8", http.StatusBadRequest},
		{"not a number", http.MethodPost, "/days/abc/hint", http.StatusBadRequest},
		{"locked day", http.MethodPost, "/days/3/begin", http.StatusForbidden},
		{"bad leaderboard day", http.MethodGet, "/leaderboard?day=x", http.StatusBadRequest},
		{"bad share scope", http.MethodGet, "/share?scope=week", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := do(t, c, tt.method, env.url+tt.path, nil)
			assert.Equal(t, tt.want, code)
		})
	}

	solveDay1(t, env, c)
	code, _ := do(t, c, http.MethodPost, env.url+"/days/1/answer", answerReq{Answer: "42"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = do(t, c, http.MethodPost, env.url+"/days/1/answer", nil)
	assert.Equal(t, http.StatusBadRequest, code, "missing body")
}

func TestResets(t *testing.T) {
	env := newTestServer(t, nil)
	c := env.client(t)
	solveDay1(t, env, c)

	code, body := do(t, c, http.MethodPost, env.url+"/days/1/reset", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[progress.GameProgress](t, body).CompletedDays)

	code, body = do(t, c, http.MethodGet, env.url+"/leaderboard?day=1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[leaderboardRes](t, body).Rows)

	_, _ = do(t, c, http.MethodPost, env.url+"/days/1/begin", nil)
	code, _ = do(t, c, http.MethodDelete, env.url+"/progress", nil)
	require.Equal(t, http.StatusOK, code)
	_, body = do(t, c, http.MethodGet, env.url+"/progress", nil)
	assert.Empty(t, decode[progress.GameProgress](t, body).DayStats)
}

func TestShare(t *testing.T) {
	env := newTestServer(t, nil)
	c := env.client(t)
	solveDay1(t, env, c)

	code, body := do(t, c, http.MethodGet, env.url+"/share?scope=day&day=1", nil)
	require.Equal(t, http.StatusOK, code)
	sh := decode[progress.Share](t, body)
	assert.Equal(t, "EMODE Day 1", sh.Title)
	assert.Contains(t, sh.Text, "Completed!")

	code, body = do(t, c, http.MethodPost, env.url+"/share", shareReq{Scope: progress.ScopeOverall})
	require.Equal(t, http.StatusOK, code)
	res := decode[shareRes](t, body)
	assert.True(t, res.Delivered)
	assert.True(t, strings.HasPrefix(env.shared.String(), "My EMODE Progress\n\nEMODE Progress!\n"))

	code, _ = do(t, c, http.MethodPost, env.url+"/share", shareReq{Scope: progress.ScopeDay, Day: 9})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, c, http.MethodGet, env.url+"/share/card.png?scope=day&day=1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))
}

type failingDeliverer struct{}

func (failingDeliverer) Deliver(context.Context, progress.Share) error {
	return errors.New("webhook down")
}

func TestShareDeliveryFailure(t *testing.T) {
	env := newTestServer(t, progress.Chain{failingDeliverer{}})
	c := env.client(t)

	code, body := do(t, c, http.MethodPost, env.url+"/share", shareReq{Scope: progress.ScopeOverall})
	assert.Equal(t, http.StatusBadGateway, code)
	res := decode[shareRes](t, body)
	assert.False(t, res.Delivered)
	assert.Equal(t, "share_failed", res.Error)
	assert.Contains(t, res.Text, "EMODE Progress!", "text is returned for a manual copy")
}

func TestShareWithoutTargets(t *testing.T) {
	env := newTestServer(t, progress.Chain{})
	c := env.client(t)
	solveDay1(t, env, c)

	code, body := do(t, c, http.MethodPost, env.url+"/share", shareReq{Scope: progress.ScopeDay, Day: 1})
	assert.Equal(t, http.StatusBadGateway, code)
	res := decode[shareRes](t, body)
	assert.False(t, res.Delivered)
	assert.Equal(t, "EMODE Day 1", res.Title)
	assert.Contains(t, res.Text, "Completed!")
}

func TestSignupClaimsAnonymousProgress(t *testing.T) {
	env := newTestServer(t, nil)
	c := env.client(t)
	solveDay1(t, env, c)

	creds := credentials{Username: "cipher_fan", Password: "correct horse"}
	code, _ := do(t, c, http.MethodPost, env.url+"/auth/signup", creds)
	require.Equal(t, http.StatusCreated, code)

	code, body := do(t, c, http.MethodGet, env.url+"/auth/me", nil)
	require.Equal(t, http.StatusOK, code)
	me := decode[authUser](t, body)
	assert.Equal(t, "cipher_fan", me.Username)

	_, body = do(t, c, http.MethodGet, env.url+"/progress", nil)
	assert.Equal(t, []progress.Day{1}, decode[progress.GameProgress](t, body).CompletedDays)

	_, body = do(t, c, http.MethodGet, env.url+"/leaderboard?day=1", nil)
	rows := decode[leaderboardRes](t, body).Rows
	require.Len(t, rows, 1)
	assert.Equal(t, "cipher_fan", rows[0].Username)

	_, body = do(t, c, http.MethodGet, env.url+"/leaderboard", nil)
	overall := decode[leaderboardRes](t, body).Rows
	require.Len(t, overall, 1)
	assert.Equal(t, 300, overall[0].Score, "three tries, no hints")

	code, _ = do(t, c, http.MethodPost, env.url+"/auth/signup", creds)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = do(t, c, http.MethodPost, env.url+"/auth/logout", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, c, http.MethodGet, env.url+"/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	// a fresh browser logs in and sees the account's progress
	other := env.client(t)
	code, _ = do(t, other, http.MethodPost, env.url+"/auth/login", credentials{Username: "CIPHER_FAN", Password: "correct horse"})
	require.Equal(t, http.StatusOK, code)
	_, body = do(t, other, http.MethodGet, env.url+"/progress", nil)
	assert.Equal(t, []progress.Day{1}, decode[progress.GameProgress](t, body).CompletedDays)

	code, _ = do(t, other, http.MethodPost, env.url+"/auth/login", credentials{Username: "cipher_fan", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestSignupValidation(t *testing.T) {
	env := newTestServer(t, nil)
	c := env.client(t)

	code, _ := do(t, c, http.MethodPost, env.url+"/auth/signup", credentials{Username: "ab", Password: "longenough"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, c, http.MethodPost, env.url+"/auth/signup", credentials{Username: "valid_name", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAnonCookieMustBeAnonID(t *testing.T) {
	env := newTestServer(t, nil)
	c := env.client(t)
	solveDay1(t, env, c)
	code, _ := do(t, c, http.MethodPost, env.url+"/auth/signup", credentials{Username: "owner_one", Password: "correct horse"})
	require.Equal(t, http.StatusCreated, code)
	_, body := do(t, c, http.MethodGet, env.url+"/auth/me", nil)
	me := decode[authUser](t, body)

	for _, forged := range []string{me.ID, "anon-" + me.ID + "x", "anon-"} {
		req, err := http.NewRequest(http.MethodGet, env.url+"/progress", nil)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "emode_anon", Value: forged})
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		raw, err := io.ReadAll(res.Body)
		res.Body.Close()
		require.NoError(t, err)

		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Empty(t, decode[progress.GameProgress](t, raw).CompletedDays, "cookie %q", forged)

		var issued string
		for _, ck := range res.Cookies() {
			if ck.Name == "emode_anon" {
				issued = ck.Value
			}
		}
		assert.True(t, strings.HasPrefix(issued, "anon-"), "a fresh anon id replaces %q", forged)
		assert.NotEqual(t, forged, issued)
	}
}
