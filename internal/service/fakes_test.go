package service

import (
	"context"
	"errors"
	"sync"

	"github.com/user/garybot/internal/character"
	"github.com/user/garybot/internal/model"
	"github.com/user/garybot/internal/retrieval"
)

var errStore = errors.New("store unavailable")

type fakeHistory struct {
	mu        sync.Mutex
	messages  []model.ChatMessage
	lastLimit int
	recentErr error
}

func (f *fakeHistory) Append(_ context.Context, sessionID string, role model.Role, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, model.ChatMessage{ID: len(f.messages) + 1, SessionID: sessionID, Role: role, Content: content})
	return nil
}

func (f *fakeHistory) Recent(_ context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	var out []model.ChatMessage
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeHistory) DeleteSession(_ context.Context, sessionID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.messages[:0]
	var n int64
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			n++
			continue
		}
		kept = append(kept, m)
	}
	f.messages = kept
	return n, nil
}

func (f *fakeHistory) session(id string) []model.ChatMessage {
	msgs, _ := f.Recent(context.Background(), id, 1000)
	return msgs
}

type respondCall struct {
	persona        string
	history        []model.ChatMessage
	episodeContext string
	question       string
}

type fakeGenerator struct {
	respond      func(call respondCall) (string, error)
	visionPrompt string
	visionErr    error
	image        []byte
	imageErr     error

	respondCalls []respondCall
	imagePrompts []string
	visionCalls  int
}

func (f *fakeGenerator) Respond(_ context.Context, persona string, history []model.ChatMessage, episodeContext, question string) (string, error) {
	call := respondCall{persona: persona, history: history, episodeContext: episodeContext, question: question}
	f.respondCalls = append(f.respondCalls, call)
	if f.respond == nil {
		return "Miau miau", nil
	}
	return f.respond(call)
}

func (f *fakeGenerator) PromptFromImage(context.Context, string, []byte) (string, error) {
	f.visionCalls++
	return f.visionPrompt, f.visionErr
}

func (f *fakeGenerator) GenerateImage(_ context.Context, prompt string) ([]byte, error) {
	f.imagePrompts = append(f.imagePrompts, prompt)
	return f.image, f.imageErr
}

type fakeClassifier struct {
	intent model.Intent
	calls  int
}

func (f *fakeClassifier) Classify(context.Context, string) model.Intent {
	f.calls++
	return f.intent
}

type fakeImages struct {
	saved [][]byte
}

func (f *fakeImages) Save(_ context.Context, data []byte, ext string) (string, error) {
	f.saved = append(f.saved, data)
	return "/images/test" + ext, nil
}

type fakeSheets struct {
	sheet *character.Sheet
	paths []string
}

func (f *fakeSheets) Load(path string) (*character.Sheet, error) {
	f.paths = append(f.paths, path)
	return f.sheet, nil
}

type countingSearcher struct {
	inner   *retrieval.Searcher
	queries []string
	limits  []int
}

func (c *countingSearcher) Search(ctx context.Context, query string, limit int) ([]model.Episode, error) {
	c.queries = append(c.queries, query)
	c.limits = append(c.limits, limit)
	return c.inner.Search(ctx, query, limit)
}

func garySheet() *character.Sheet {
	return &character.Sheet{
		Name:                   "Gary",
		Series:                 "Bob Esponja",
		VisualDescriptionForAI: "Caracol rosa",
		PersonalityTraits:      []string{"leal", "sabio"},
		Catchphrases:           []string{"Miau"},
	}
}

func catalog() []model.Episode {
	return []model.Episode{
		{
			ID:                  1,
			Season:              model.IntPtr(1),
			Number:              model.IntPtr(2),
			Title:               model.StrPtr("Sandy's Rocket"),
			Summary:             model.StrPtr("Gary finds Sandy's old rocket buried in the yard."),
			Characters:          model.StrPtr("Gary, Sandy"),
			VisualSummary:       model.StrPtr("Un cohete plateado en el jardín"),
			KeyCharacters:       model.StrPtr("Gary, Sandy"),
			KeyObjectsLocations: model.StrPtr("cohete, jardín"),
		},
		{
			ID:         2,
			Season:     model.IntPtr(1),
			Number:     model.IntPtr(3),
			Title:      model.StrPtr("Gary Takes a Bath"),
			Summary:    model.StrPtr("SpongeBob tries to bathe Gary."),
			Characters: model.StrPtr("SpongeBob, Gary"),
		},
	}
}
