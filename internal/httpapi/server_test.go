package httpapi

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vthunder/parley/internal/bots"
	"github.com/vthunder/parley/internal/corpus"
	"github.com/vthunder/parley/internal/intent"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	alienDef, err := corpus.Load("alien")
	require.NoError(t, err)
	alienDef.Intents.Scan = intent.ScanAll
	alien, err := bots.NewAlien(alienDef, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	cantinaDef, err := corpus.Load("cantina")
	require.NoError(t, err)
	cantina, err := bots.NewCantina(cantinaDef, nil, nil)
	require.NoError(t, err)

	return NewRouter(map[string]Bot{
		"alien":   {Def: alienDef, Responder: alien},
		"cantina": {Def: cantinaDef, Responder: cantina},
	})
}

func post(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, RespondResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	var out RespondResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestRespond(t *testing.T) {
	h := testRouter(t)

	rec, out := post(t, h, "/v1/bots/alien/respond", `{"utterance":"please cube 4 for me"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alien", out.Bot)
	assert.Contains(t, out.Response, "64")
	assert.False(t, out.Exit)
	_, err := uuid.Parse(out.RequestID)
	assert.NoError(t, err)

	_, out = post(t, h, "/v1/bots/cantina/respond", `{"utterance":"any droids around"}`)
	assert.Equal(t, "Sorry, the droid that handles drink orders is out for repairs.", out.Response)

	_, out = post(t, h, "/v1/bots/cantina/respond", `{"utterance":"I know what I want"}`)
	assert.True(t, out.Exit, `"know" contains the exit word "no"`)
	assert.Equal(t, "Ok, have a good day!", out.Response)
}

func TestRespond_Fallback(t *testing.T) {
	_, out := post(t, testRouter(t), "/v1/bots/alien/respond", `{"utterance":"cube 99999999999999999999"}`)
	assert.True(t, out.Fallback)
	assert.Equal(t, "I see. Can you elaborate? ", out.Response)
}

func TestRespond_BadRequests(t *testing.T) {
	h := testRouter(t)

	rec, _ := post(t, h, "/v1/bots/droid/respond", `{"utterance":"beep"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = post(t, h, "/v1/bots/alien/respond", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post(t, h, "/v1/bots/alien/respond", `{"utterance":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAndHealth(t *testing.T) {
	h := testRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bots", nil))
	assert.JSONEq(t, `{"bots":["alien","cantina"]}`, rec.Body.String())
}
