package authstate_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-blog-server/authstate"
)

func TestNew_StartsAnonymous(t *testing.T) {
	s := authstate.New()
	st := s.Snapshot()
	require.False(t, st.IsAuthenticated)
	require.Empty(t, st.UserName)
	require.Empty(t, st.UserEmail)
	require.Equal(t, authstate.DefaultSettings(), st.UserSettings)
}

func TestSetAuth_DefaultsFillGaps(t *testing.T) {
	s := authstate.New()
	st := s.SetAuth(authstate.AuthInput{
		UserName:     "ada",
		UserEmail:    "ada@example.com",
		UserSettings: map[string]any{"theme": "dark", "lang": "en"},
	})

	require.True(t, st.IsAuthenticated)
	require.Equal(t, "ada", st.UserName)
	require.Equal(t, map[string]any{
		"theme":        "dark",
		"lang":         "en",
		"postsPerPage": 10,
		"editorMode":   "markdown",
	}, st.UserSettings)
	require.Equal(t, st, s.Snapshot())
}

func TestClearAuth_ResetsToDefaults(t *testing.T) {
	s := authstate.New()
	s.SetAuth(authstate.AuthInput{UserName: "ada", UserEmail: "ada@example.com"})
	s.SetSetting("theme", "dark")

	st := s.ClearAuth()
	require.Equal(t, authstate.New().Snapshot(), st)
}

func TestUpdateSettings_ShallowLastWriteWins(t *testing.T) {
	s := authstate.New(authstate.WithDefaults(map[string]any{"editor": map[string]any{"font": "mono"}}))
	s.UpdateSettings(map[string]any{"editor": map[string]any{"size": 12}, "theme": "dark"})
	st := s.UpdateSettings(map[string]any{"theme": "solarized"})

	require.Equal(t, map[string]any{
		"editor": map[string]any{"size": 12},
		"theme":  "solarized",
	}, st.UserSettings)

	st = s.SetSetting("theme", "light")
	require.Equal(t, "light", st.UserSettings["theme"])
}

func TestSnapshot_IsIsolated(t *testing.T) {
	s := authstate.New()
	snap := s.Snapshot()
	snap.UserSettings["theme"] = "mutated"
	require.Equal(t, "light", s.Snapshot().UserSettings["theme"])

	partial := map[string]any{"theme": "dark"}
	s.UpdateSettings(partial)
	partial["theme"] = "mutated"
	require.Equal(t, "dark", s.Snapshot().UserSettings["theme"])
}

func TestSnapshot_NeverObservesPartialUpdates(t *testing.T) {
	s := authstate.New(authstate.WithDefaults(map[string]any{"a": 0, "b": 0}))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 500 {
			s.UpdateSettings(map[string]any{"a": i, "b": i})
		}
	}()
	go func() {
		defer wg.Done()
		for range 500 {
			st := s.Snapshot()
			assert.Equal(t, st.UserSettings["a"], st.UserSettings["b"])
		}
	}()
	wg.Wait()
}

func TestSubscribe(t *testing.T) {
	s := authstate.New()
	var seen []authstate.State
	unsubscribe := s.Subscribe(func(st authstate.State) { seen = append(seen, st) })

	s.SetAuth(authstate.AuthInput{UserName: "ada", UserEmail: "ada@example.com"})
	s.ClearAuth()
	unsubscribe()
	unsubscribe()
	s.SetSetting("theme", "dark")

	require.Len(t, seen, 2)
	require.True(t, seen[0].IsAuthenticated)
	require.False(t, seen[1].IsAuthenticated)
}

func TestMiddleware_Order(t *testing.T) {
	var order []string
	tag := func(name string) authstate.Middleware {
		return func(next authstate.Dispatch) authstate.Dispatch {
			return func(a authstate.Action) authstate.State {
				order = append(order, name+">")
				st := next(a)
				order = append(order, "<"+name)
				return st
			}
		}
	}

	s := authstate.New(authstate.WithMiddleware(tag("outer"), nil, tag("inner")))
	s.ClearAuth()
	require.Equal(t, []string{"outer>", "inner>", "<inner", "<outer"}, order)
}

func TestDevInspector(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	require.Nil(t, authstate.DevInspector(false, logger))

	s := authstate.New(authstate.WithMiddleware(authstate.DevInspector(true, logger)))
	s.SetAuth(authstate.AuthInput{UserName: "ada", UserEmail: "ada@example.com"})

	require.Contains(t, buf.String(), `"action":"setAuth"`)
	require.Contains(t, buf.String(), `"authenticated":true`)
	require.Contains(t, buf.String(), `"user":"ada"`)
}
