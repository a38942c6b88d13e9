package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dotcommander/bedtime/internal/console"
	"github.com/dotcommander/bedtime/internal/core"
)

// session drives one interactive generate-and-revise exchange.
type session struct {
	pipeline *core.Pipeline
	renderer *console.Renderer
	prompter *console.Prompter
	out      io.Writer
	request  string
	noRevise bool
}

func (s *session) run(ctx context.Context) error {
	fmt.Fprintln(s.out, s.renderer.Banner())

	request := s.request
	if request == "" {
		answer, err := s.prompter.Ask("\nWhat kind of story would you like? ")
		if err != nil && !errors.Is(err, console.ErrClosed) {
			return err
		}
		request = answer
	}
	if request == "" {
		fmt.Fprintln(s.out, "Please provide a story request!")
		return nil
	}

	fmt.Fprintln(s.out, "\nGenerating your bedtime story...")
	result, err := s.pipeline.Generate(ctx, request)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.renderer.Story("YOUR BEDTIME STORY", result.Story))
	fmt.Fprintln(s.out, s.renderer.Summary(result.Request.Category, result.Evaluation))

	if !s.noRevise {
		if err := s.revise(ctx, result); err != nil {
			return err
		}
	}

	fmt.Fprintln(s.out, "\n"+s.renderer.Goodbye())
	return nil
}

func (s *session) revise(ctx context.Context, result core.Result) error {
	text := result.Story
	for {
		yes, err := s.prompter.Confirm("\nMake changes? (yes/no): ")
		if errors.Is(err, console.ErrClosed) || (err == nil && !yes) {
			fmt.Fprintln(s.out, "\nEnjoy your story!")
			return nil
		}
		if err != nil {
			return err
		}

		change, err := s.prompter.Ask("What to change? ")
		if errors.Is(err, console.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		if change == "" {
			continue
		}

		revised, err := s.pipeline.Revise(ctx, text, change, result.Request.Category)
		if err != nil {
			return err
		}
		text = revised

		fmt.Fprintln(s.out, "\nRe-evaluating updated story...")
		eval, err := s.pipeline.Evaluate(ctx, text)
		if err != nil {
			return err
		}

		fmt.Fprintln(s.out, s.renderer.ScoreCard(eval, s.pipeline.Config().Threshold))
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, s.renderer.Story("UPDATED STORY", text))
		fmt.Fprintln(s.out, s.renderer.Summary(result.Request.Category, eval))
	}
}
