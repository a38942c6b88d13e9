package agent

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
)

// ErrScriptExhausted is returned by ScriptedClient once its queue is empty.
var ErrScriptExhausted = errors.New("scripted client has no responses left")

// ScriptedReply is one queued answer from a ScriptedClient.
type ScriptedReply struct {
	Text string
	Err  error
}

// ScriptedClient replays queued replies in order and records every request.
type ScriptedClient struct {
	mu       sync.Mutex
	replies  []ScriptedReply
	requests []GenerationRequest
}

// NewScriptedClient queues texts as successful replies.
func NewScriptedClient(texts ...string) *ScriptedClient {
	s := &ScriptedClient{}
	for _, t := range texts {
		s.replies = append(s.replies, ScriptedReply{Text: t})
	}
	return s
}

// Push queues additional replies.
func (s *ScriptedClient) Push(replies ...ScriptedReply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

func (s *ScriptedClient) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		return "", ErrScriptExhausted
	}
	next := s.replies[0]
	s.replies = s.replies[1:]
	return next.Text, next.Err
}

// Requests returns a copy of every request received so far.
func (s *ScriptedClient) Requests() []GenerationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GenerationRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// MockClient provides canned responses for running the CLI without an API key.
// The stage is detected from the opening words of each prompt.
type MockClient struct {
	responses map[string]string
	revisions int
}

// NewMockClient creates a mock AI client for offline runs
func NewMockClient() *MockClient {
	return &MockClient{
		responses: map[string]string{
			"analysis": "```json\n" + `{
				"category": "animal",
				"themes": ["friendship", "sharing"],
				"characters": ["Pip the hedgehog", "Mira the owl"],
				"setting": "a moonlit meadow",
				"tone": "cozy"
			}` + "\n```",
			"arc": `{
				"setup": "Pip the hedgehog finds a glowing acorn at the edge of the meadow.",
				"rising_action": "The acorn's glow fades and Pip worries it is broken.",
				"climax": "Mira the owl shows Pip the acorn only glows when it is shared.",
				"falling_action": "Pip carries the acorn to every burrow, lighting each one.",
				"resolution": "The whole meadow falls asleep under a soft shared glow."
			}`,
			"story": "Once upon a time, at the quiet edge of a moonlit meadow, a small hedgehog named Pip found an acorn that glowed like a tiny lantern.\n\nPip held it close, but the glow grew dim. \"Oh no,\" Pip whispered. \"I've broken it.\"\n\nFrom the old oak, Mira the owl blinked her wise eyes. \"Some lights only shine when they are shared,\" she said.\n\nSo Pip rolled the acorn from burrow to burrow. With each friend who smiled at it, the glow grew warmer, until the whole meadow shimmered softly.\n\nAnd as the stars blinked sleepily overhead, every creature drifted off to dream, warm and bright and together. The End.",
			"evaluation": `{
				"age_appropriateness": 9,
				"story_structure": 8,
				"engagement": 8,
				"educational_value": 7,
				"overall_score": 8.0,
				"feedback": "Gentle and well paced. Could add one more sensory detail in the middle."
			}`,
		},
	}
}

// Generate returns a mock response
func (m *MockClient) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	promptLower := strings.ToLower(req.Prompt)

	switch {
	case strings.HasPrefix(promptLower, "you are judging"):
		return m.responses["evaluation"], nil
	case strings.HasPrefix(promptLower, "you are analyzing"):
		return m.responses["analysis"], nil
	case strings.HasPrefix(promptLower, "plan the story arc"):
		return m.responses["arc"], nil
	case strings.HasPrefix(promptLower, "revise"), strings.HasPrefix(promptLower, "update"):
		m.revisions++
		return m.responses["story"] + "\n\n(Revised " + strconv.Itoa(m.revisions) + "x.)", nil
	default:
		return m.responses["story"], nil
	}
}
