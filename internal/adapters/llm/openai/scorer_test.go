package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/autoapply/internal/domain/model"
	"github.com/okian/autoapply/internal/domain/scoring"
	"github.com/okian/autoapply/pkg/logger"
)

type fakeCompleter struct {
	resp *openai.ChatCompletion
	err  error
	got  openai.ChatCompletionNewParams
}

func (f *fakeCompleter) New(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.got = body
	return f.resp, f.err
}

func reply(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}},
	}
}

func TestScorer(t *testing.T) {
	in := scoring.Input{
		Profile: model.DemoProfile(),
		Job:     model.JobPosting{ID: "j1", Title: "Frontend Developer", Company: "Acme", Description: "TypeScript"},
	}

	Convey("Given an openai scorer", t, func() {
		fake := &fakeCompleter{}
		s := &Scorer{completions: fake, model: "test-model"}

		Convey("When the model returns a JSON score", func() {
			fake.resp = reply(`{"score": 81, "reason": "TypeScript match"}`)
			res, err := s.Score(context.Background(), in)

			Convey("Then it is parsed and the request targets the model", func() {
				So(err, ShouldBeNil)
				So(res, ShouldResemble, scoring.Result{Score: 81, Reason: "TypeScript match"})
				So(string(fake.got.Model), ShouldEqual, "test-model")
				So(fake.got.Messages, ShouldHaveLength, 2)
				So(fake.got.ResponseFormat.OfJSONObject, ShouldNotBeNil)
			})
		})

		Convey("When the API fails", func() {
			fake.err = errors.New("429 rate limited")
			_, err := s.Score(context.Background(), in)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "rate limited")
		})

		Convey("When no choices come back", func() {
			fake.resp = &openai.ChatCompletion{}
			_, err := s.Score(context.Background(), in)
			So(errors.Is(err, scoring.ErrInvalidResult), ShouldBeTrue)
		})

		Convey("When the content is not JSON", func() {
			fake.resp = reply("no idea")
			_, err := s.Score(context.Background(), in)
			So(errors.Is(err, scoring.ErrInvalidResult), ShouldBeTrue)
		})

		Convey("When the model scores outside 0..100", func() {
			fake.resp = reply(`{"score": 140, "reason": "perfect"}`)
			_, err := s.Score(context.Background(), in)
			So(errors.Is(err, scoring.ErrInvalidResult), ShouldBeTrue)

			Convey("Then the resilient scorer answers with the heuristic", func() {
				So(logger.Init(), ShouldBeNil)
				res, err := scoring.NewResilient(s).Score(context.Background(), in)
				So(err, ShouldBeNil)
				So(res, ShouldResemble, scoring.NewHeuristic().Evaluate(in))
			})
		})
	})

	Convey("Given constructor arguments", t, func() {
		_, err := New("  ", "")
		So(err, ShouldNotBeNil)

		s, err := New("sk-test", "")
		So(err, ShouldBeNil)
		So(s.model, ShouldEqual, defaultModel)
		So(s.Name(), ShouldEqual, "openai")
	})
}
