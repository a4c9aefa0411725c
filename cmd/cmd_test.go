package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jsphweid/jianpu/db"
	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/scale"
	"github.com/jsphweid/jianpu/session"
	"github.com/stretchr/testify/assert"
)

const tinyScore = `<score-partwise><part id="P1"><measure number="1">
<attributes><divisions>1</divisions><key><fifths>1</fifths></key></attributes>
<note><pitch><step>G</step><octave>4</octave></pitch><duration>1</duration></note>
<note><pitch><step>B</step><octave>4</octave></pitch><duration>2</duration></note>
</measure></part></score-partwise>`

type memStore struct {
	mu      sync.Mutex
	records map[string]model.DocumentRecord
}

func (s *memStore) Save(_ context.Context, rec model.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Owner+"/"+db.SortKey(rec.Title, rec.Album)] = rec
	return nil
}

func (s *memStore) Load(_ context.Context, owner, title, album string) (model.DocumentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[owner+"/"+db.SortKey(title, album)]
	if !ok {
		return rec, db.ErrNotFound
	}
	return rec, nil
}

func (s *memStore) Delete(_ context.Context, owner, title, album string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, owner+"/"+db.SortKey(title, album))
	return nil
}

func (s *memStore) List(_ context.Context, owner string) ([]model.DocumentSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []model.DocumentSummary
	for k, r := range s.records {
		if strings.HasPrefix(k, owner+"/") {
			res = append(res, model.DocumentSummary{Title: r.Title, Album: r.Album})
		}
	}
	return res, nil
}

func do(t *testing.T, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	NewHandler().ServeHTTP(w, req)
	return w
}

func TestPrintTokens(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, printTokens(&buf, "1 | 0 5,", scale.MustKeyAt(0), false))

	out := buf.String()
	assert := assert.New(t)
	assert.Contains(out, "key: C Major")
	assert.Contains(out, "pitch=60 index=0 duration=1")
	assert.Contains(out, "rest duration=1")
	assert.Contains(out, "pitch=55 index=-3")
	assert.Contains(out, "total: 2")
}

func TestReadText(t *testing.T) {
	text, err := readText([]string{"1 2"}, strings.NewReader("ignored"))
	assert.NoError(t, err)
	assert.Equal(t, "1 2", text)

	text, err = readText([]string{"-"}, strings.NewReader("3 4"))
	assert.NoError(t, err)
	assert.Equal(t, "3 4", text)
}

func TestImportDirectory(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte(tinyScore), 0644))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "b.mid"), []byte("junk"), 0644))

	var buf bytes.Buffer
	assert.NoError(t, run(&buf, dir, 0, nil))

	out := buf.String()
	assert.Contains(t, out, "key: G Major\n1 3-\n")
	assert.Contains(t, out, "imported 1 of 2 files")
}

func TestImportMissingPath(t *testing.T) {
	assert.Error(t, run(&bytes.Buffer{}, "/does/not/exist", 0, nil))
}

func TestHandleParse(t *testing.T) {
	body, _ := json.Marshal(model.ParseRequestBody{Text: "1 2_ 3_", KeyIndex: 1})
	w := do(t, http.MethodPost, "/parse", body)

	assert := assert.New(t)
	assert.Equal(http.StatusOK, w.Code)
	assert.NotEmpty(w.Header().Get("X-Request-Id"))

	var res model.ParseResponse
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(res.Tokens, 3)
	assert.Equal(2.0, res.TotalDuration)
	assert.Equal("G", res.Tokens[0].Note.DisplayLabel)
}

func TestHandleParseEmptyText(t *testing.T) {
	w := do(t, http.MethodPost, "/parse", []byte(`{"text": ""}`))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tokens": [], "totalDuration": 0}`, w.Body.String())
}

func TestHandleParseBadInput(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, "/parse", []byte(`{"text": "1", "keyIndex": 13}`)).Code)

	w := do(t, http.MethodPost, "/parse", []byte(`nope`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var res model.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Contains(t, res.Error, "could not unmarshal request body")
}

func TestHandleKeys(t *testing.T) {
	w := do(t, http.MethodGet, "/keys", nil)
	var keys []model.Key
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &keys))
	assert.Len(t, keys, 13)
	assert.Equal(t, "Numbers Only", keys[12].Name)
}

func TestHandleLayout(t *testing.T) {
	body, _ := json.Marshal(model.LayoutRequestBody{
		Blocks: []model.Block{
			{Type: model.MelodyBlock, Content: "1 2 3"},
			{Type: model.ChordsBlock, Content: "Am"},
		},
		Settings: model.Settings{HorizontalSpacing: 40, VerticalScale: 10},
	})
	w := do(t, http.MethodPost, "/layout", body)
	assert.Equal(t, http.StatusOK, w.Code)

	var res model.LayoutResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.Drawings, 2)
	assert.Len(t, res.Drawings[0].Glyphs, 3)
	assert.Equal(t, 140.0, res.Drawings[0].Canvas.Width)
	assert.Len(t, res.Drawings[1].Glyphs, 2)
}

func TestHandleImport(t *testing.T) {
	assert := assert.New(t)

	w := do(t, http.MethodPost, "/import?format=musicxml", []byte(tinyScore))
	assert.Equal(http.StatusOK, w.Code)
	var res model.ImportResponse
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(model.ImportResponse{Text: "1 3-", DetectedKeyIndex: 1}, res)

	w = do(t, http.MethodPost, "/import?format=musicxml&key=0", []byte(tinyScore))
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(model.ImportResponse{Text: "5 7-", DetectedKeyIndex: 0}, res)

	assert.Equal(http.StatusBadRequest, do(t, http.MethodPost, "/import?format=pdf", []byte(tinyScore)).Code)
	assert.Equal(http.StatusBadRequest, do(t, http.MethodPost, "/import?format=midi", []byte("junk")).Code)

	empty := `<score-partwise><part id="P1"><measure number="1"></measure></part></score-partwise>`
	assert.Equal(http.StatusUnprocessableEntity, do(t, http.MethodPost, "/import?format=xml", []byte(empty)).Code)
}

func TestDocumentRoutes(t *testing.T) {
	assert := assert.New(t)
	SetStore(&memStore{records: make(map[string]model.DocumentRecord)})
	defer SetStore(nil)

	missingTitle, _ := json.Marshal(model.DocumentRecord{Owner: "o1"})
	assert.Equal(http.StatusBadRequest, do(t, http.MethodPut, "/documents", missingTitle).Code)

	rec := model.DocumentRecord{
		Owner:    "o1",
		Title:    "Song",
		Album:    "LP",
		KeyIndex: 2,
		Envelope: model.Envelope{Blocks: []model.Block{{Type: model.MelodyBlock, Content: "1 2"}}},
	}
	body, _ := json.Marshal(rec)
	assert.Equal(http.StatusNoContent, do(t, http.MethodPut, "/documents", body).Code)

	w := do(t, http.MethodGet, "/documents/o1/Song?album=LP", nil)
	assert.Equal(http.StatusOK, w.Code)
	var got model.DocumentRecord
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal("1 2", got.Envelope.Blocks[0].Content)
	assert.Equal(120, got.TempoBPM)
	assert.Equal(40.0, got.Envelope.Settings.HorizontalSpacing)

	w = do(t, http.MethodGet, "/documents/o1", nil)
	assert.JSONEq(`[{"title": "Song", "album": "LP", "updatedAt": 0}]`, w.Body.String())
	assert.JSONEq(`[]`, do(t, http.MethodGet, "/documents/o2", nil).Body.String())

	assert.Equal(http.StatusNotFound, do(t, http.MethodGet, "/documents/o1/Song", nil).Code)
	assert.Equal(http.StatusNoContent, do(t, http.MethodDelete, "/documents/o1/Song?album=LP", nil).Code)
	assert.Equal(http.StatusNotFound, do(t, http.MethodGet, "/documents/o1/Song?album=LP", nil).Code)
}

func TestWriteSections(t *testing.T) {
	assert := assert.New(t)
	c := session.New(nil, "", nil)
	assert.NoError(c.SetMeta("Jasmine Flower", "Folk"))
	assert.NoError(c.SetContent(0, "3 3 5 6"))
	assert.NoError(c.AddBlock(0, model.ChordsBlock))

	dir := t.TempDir()
	assert.NoError(writeSections(c, dir))

	for _, name := range []string{"Folk_Jasmine_Flower_Section_1.svg", "Folk_Jasmine_Flower_Section_2.svg"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if assert.NoError(err, name) {
			assert.Contains(string(data), "<svg")
		}
	}
}
