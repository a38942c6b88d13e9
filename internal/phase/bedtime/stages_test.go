package bedtime

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dotcommander/bedtime/internal/agent"
	"github.com/dotcommander/bedtime/internal/core"
	"github.com/dotcommander/bedtime/internal/domain/story"
)

func newTestGateway(replies ...string) (*agent.Gateway, *agent.ScriptedClient) {
	client := agent.NewScriptedClient(replies...)
	return agent.NewGateway(client), client
}

func TestAnalyzer(t *testing.T) {
	params := Params{MaxTokens: 300, Temperature: 0.3}

	tests := []struct {
		name     string
		response string
		want     story.Request
		wantKind bool
	}{
		{
			name:     "valid fenced response",
			response: "```json\n{\"category\":\"fantasy\",\"themes\":[\"magic\"],\"characters\":[\"Luna\"],\"setting\":\"castle\",\"tone\":\"whimsical\"}\n```",
			want: story.Request{
				Category: story.CategoryFantasy, Themes: []string{"magic"}, Characters: []string{"Luna"},
				Setting: "castle", Tone: "whimsical",
			},
		},
		{
			name:     "unparsable falls back to defaults",
			response: "Sorry, I can't do JSON today.",
			want: story.Request{
				Category: story.CategoryAdventure, Themes: []string{"bravery"}, Characters: []string{"hero"},
				Setting: "unspecified", Tone: "exciting",
			},
		},
		{
			name:     "missing fields come from defaults",
			response: `{"category":"animal","themes":["sharing"]}`,
			want: story.Request{
				Category: story.CategoryAnimal, Themes: []string{"sharing"}, Characters: []string{"hero"},
				Setting: "unspecified", Tone: "exciting",
			},
		},
		{
			name:     "mistyped fields fall back wholesale but keep category",
			response: `{"category":"courage","themes":"not a list"}`,
			want: story.Request{
				Category: story.CategoryCourage, Themes: []string{"bravery"}, Characters: []string{"hero"},
				Setting: "unspecified", Tone: "exciting",
			},
		},
		{name: "unknown category", response: `{"category":"horror","themes":[],"characters":[],"setting":"","tone":""}`, wantKind: true},
		{name: "non-string category", response: `{"category":7}`, wantKind: true},
		{name: "unknown category beside mistyped field", response: `{"category":"horror","themes":"ghosts","characters":[],"setting":"","tone":""}`, wantKind: true},
		{name: "non-string category beside mistyped field", response: `{"category":["fantasy"],"setting":42}`, wantKind: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, client := newTestGateway(tt.response)
			a := NewAnalyzer(gw, nil, params)

			got, err := a.Analyze(context.Background(), "a story about a brave rabbit")
			if tt.wantKind {
				if !core.IsValueKindError(err) {
					t.Fatalf("Analyze() error = %v, want ValueKindError", err)
				}
				if !errors.Is(err, story.ErrInvalidCategory) {
					t.Errorf("Analyze() error does not wrap ErrInvalidCategory")
				}
				return
			}
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}

			tt.want.UserInput = "a story about a brave rabbit"
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Analyze() = %+v, want %+v", got, tt.want)
			}

			reqs := client.Requests()
			if len(reqs) != 1 || reqs[0].MaxTokens != 300 || reqs[0].Temperature != 0.3 {
				t.Errorf("requests = %+v", reqs)
			}
			if !strings.Contains(reqs[0].Prompt, "a story about a brave rabbit") {
				t.Error("prompt does not contain the user request")
			}
		})
	}
}

func TestAnalyzerRejectsEmptyInput(t *testing.T) {
	gw, client := newTestGateway()
	_, err := NewAnalyzer(gw, nil, Params{}).Analyze(context.Background(), "   ")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("Analyze() error = %v, want ErrInvalidInput", err)
	}
	if len(client.Requests()) != 0 {
		t.Error("empty input reached the model")
	}
}

func TestAnalyzerTransportError(t *testing.T) {
	client := &agent.ScriptedClient{}
	client.Push(agent.ScriptedReply{Err: errors.New("401 unauthorized")})

	_, err := NewAnalyzer(agent.NewGateway(client), nil, Params{}).Analyze(context.Background(), "a dragon")
	if !core.IsTransportError(err) {
		t.Errorf("Analyze() error = %v, want TransportError", err)
	}
}

func TestPlanner(t *testing.T) {
	req := story.Request{UserInput: "x", Category: story.CategoryFriendship, Themes: []string{"kindness"}}

	t.Run("decodes arc", func(t *testing.T) {
		gw, _ := newTestGateway(`{"setup":"a","rising_action":"b","climax":"c","falling_action":"d","resolution":"e"}`)
		arc, err := NewPlanner(gw, nil, Params{}).Plan(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		want := story.Arc{Setup: "a", RisingAction: "b", Climax: "c", FallingAction: "d", Resolution: "e"}
		if arc != want {
			t.Errorf("Plan() = %+v, want %+v", arc, want)
		}
	})

	t.Run("falls back to default arc", func(t *testing.T) {
		gw, _ := newTestGateway("not json")
		arc, err := NewPlanner(gw, nil, Params{}).Plan(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		want := story.Arc{
			Setup: "Introduce character.", RisingAction: "Challenge appears.", Climax: "Face challenge.",
			FallingAction: "Find solution.", Resolution: "Happy ending.",
		}
		if arc != want {
			t.Errorf("Plan() = %+v, want default %+v", arc, want)
		}
	})
}

func TestDrafterGuidance(t *testing.T) {
	tests := []struct {
		name     string
		category story.Category
		guidance string
	}{
		{name: "known category", category: story.CategoryEducational, guidance: story.GuidanceFor(story.CategoryEducational)},
		{name: "unknown category uses adventure", category: story.Category("lullaby"), guidance: story.GuidanceFor(story.CategoryAdventure)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, client := newTestGateway("  Once upon a time.\n")
			text, err := NewDrafter(gw, nil, Params{MaxTokens: 900, Temperature: 0.8}).
				Draft(context.Background(), story.Request{UserInput: "x", Category: tt.category}, story.Arc{Climax: "the big moment"})
			if err != nil {
				t.Fatalf("Draft() error = %v", err)
			}
			if text != "  Once upon a time.\n" {
				t.Errorf("Draft() = %q, want verbatim model text", text)
			}
			prompt := client.Requests()[0].Prompt
			if !strings.Contains(prompt, tt.guidance) {
				t.Errorf("prompt missing guidance %q", tt.guidance)
			}
			if !strings.Contains(prompt, "the big moment") {
				t.Error("prompt missing arc climax")
			}
		})
	}
}

func TestEvaluator(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     story.Evaluation
	}{
		{
			name:     "reported overall is trusted",
			response: `{"age_appropriateness":9,"story_structure":8,"engagement":7,"educational_value":6,"overall_score":8.2,"feedback":"Lovely."}`,
			want:     story.Evaluation{AgeAppropriateness: 9, StoryStructure: 8, Engagement: 7, EducationalValue: 6, OverallScore: 8.2, Feedback: "Lovely."},
		},
		{
			name:     "missing overall is the mean",
			response: `{"age_appropriateness":9,"story_structure":8,"engagement":7,"educational_value":6,"feedback":"Good."}`,
			want:     story.Evaluation{AgeAppropriateness: 9, StoryStructure: 8, Engagement: 7, EducationalValue: 6, OverallScore: 7.5, Feedback: "Good."},
		},
		{
			name:     "out of range values are clamped",
			response: `{"age_appropriateness":15,"story_structure":-2,"engagement":7.6,"educational_value":6,"overall_score":12,"feedback":"Wow."}`,
			want:     story.Evaluation{AgeAppropriateness: 10, StoryStructure: 0, Engagement: 8, EducationalValue: 6, OverallScore: 10, Feedback: "Wow."},
		},
		{
			name:     "unparsable uses default evaluation",
			response: "The story is great!",
			want:     story.Evaluation{AgeAppropriateness: 7, StoryStructure: 7, Engagement: 7, EducationalValue: 7, OverallScore: 7.0, Feedback: "Acceptable."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, _ := newTestGateway(tt.response)
			got, err := NewEvaluator(gw, nil, Params{}).Evaluate(context.Background(), "Once upon a time.")
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRefinerAndFeedbackApplier(t *testing.T) {
	t.Run("refiner passes story and feedback", func(t *testing.T) {
		gw, client := newTestGateway("better story")
		got, err := NewRefiner(gw, nil, Params{MaxTokens: 900, Temperature: 0.7}).
			Refine(context.Background(), "old story", "more dialogue please")
		if err != nil {
			t.Fatal(err)
		}
		if got != "better story" {
			t.Errorf("Refine() = %q", got)
		}
		prompt := client.Requests()[0].Prompt
		if !strings.Contains(prompt, "old story") || !strings.Contains(prompt, "more dialogue please") {
			t.Errorf("prompt = %q", prompt)
		}
	})

	t.Run("feedback applier uses change request", func(t *testing.T) {
		gw, client := newTestGateway("story with a dragon")
		got, err := NewFeedbackApplier(gw, nil, Params{}).
			Apply(context.Background(), "old story", "add a friendly dragon", story.CategoryFantasy)
		if err != nil {
			t.Fatal(err)
		}
		if got != "story with a dragon" {
			t.Errorf("Apply() = %q", got)
		}
		if !strings.Contains(client.Requests()[0].Prompt, "add a friendly dragon") {
			t.Error("prompt missing change request")
		}
	})

	t.Run("feedback applier rejects empty change", func(t *testing.T) {
		gw, _ := newTestGateway()
		_, err := NewFeedbackApplier(gw, nil, Params{}).Apply(context.Background(), "old", "", story.CategoryFantasy)
		if !errors.Is(err, core.ErrInvalidInput) {
			t.Errorf("Apply() error = %v, want ErrInvalidInput", err)
		}
	})
}
