package scoring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/autoapply/internal/domain/model"
	"github.com/okian/autoapply/internal/domain/scoring"
	"github.com/okian/autoapply/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func job(title, desc string) model.JobPosting {
	return model.JobPosting{ID: "j", Title: title, Company: "Acme", Description: desc}
}

func TestTokenize(t *testing.T) {
	Convey("Given job text with punctuation", t, func() {
		Convey("When it contains hyphens, parentheses and allowed symbols", func() {
			tokens := scoring.Tokenize("Full-Stack (Remote) C# / Node.js, CI/CD & C++")

			Convey("Then separators become spaces and allowed symbols stay", func() {
				So(tokens, ShouldResemble, []string{"full", "stack", "remote", "c#", "/", "node.js", "ci/cd", "c++"})
			})
		})

		Convey("When it contains newlines and non-ASCII letters", func() {
			tokens := scoring.Tokenize("Café\nDevOps\tEngineer")

			Convey("Then they split tokens", func() {
				So(tokens, ShouldResemble, []string{"caf", "devops", "engineer"})
			})
		})

		Convey("When it is empty", func() {
			So(scoring.Tokenize(""), ShouldBeEmpty)
		})
	})
}

func TestHeuristic_Evaluate(t *testing.T) {
	h := scoring.NewHeuristic()
	demo := model.DemoProfile()

	Convey("Given the demo profile", t, func() {
		Convey("When the job is a full stack role using the candidate's stack", func() {
			res := h.Evaluate(scoring.Input{Profile: demo, Job: job(
				"Full Stack Engineer",
				"Build features with React, Node.js and TypeScript on AWS",
			)})

			Convey("Then the full stack floor applies", func() {
				// base 3 + role 4 + tech 3+3+2+2 = 17 -> 0.68, floored to 0.82
				So(res.Score, ShouldEqual, 82)
				So(res.Reason, ShouldEqual, "matched skills: React, Node.js, TypeScript")
			})
		})

		Convey("When the job is a frontend role", func() {
			res := h.Evaluate(scoring.Input{Profile: demo, Job: job("Frontend Developer", "TypeScript and CSS")})

			Convey("Then the frontend floor applies", func() {
				So(res.Score, ShouldEqual, 78)
				So(res.Reason, ShouldEqual, "matched skills: TypeScript")
			})
		})

		Convey("When the job is a devops role with no skill overlap", func() {
			res := h.Evaluate(scoring.Input{Profile: demo, Job: job("DevOps Engineer", "linux on-call")})

			Convey("Then the devops floor applies even without matches", func() {
				So(res.Score, ShouldEqual, 66)
				So(res.Reason, ShouldEqual, "low skill overlap")
			})
		})

		Convey("When nothing overlaps", func() {
			res := h.Evaluate(scoring.Input{Profile: demo, Job: job("Data Analyst", "Excel and SQL reporting")})

			Convey("Then the score is zero with the low overlap reason", func() {
				So(res.Score, ShouldEqual, 0)
				So(res.Reason, ShouldEqual, "low skill overlap")
			})
		})

		Convey("When every keyword appears", func() {
			text := "Full Stack React Node.js TypeScript JavaScript Express REST Docker CI/CD Developer"
			res := h.Evaluate(scoring.Input{Profile: demo, Job: job(text, text)})

			Convey("Then the normalized score is clamped to 100", func() {
				So(res.Score, ShouldEqual, 100)
			})
		})

		Convey("When a skill matches in both title and description", func() {
			res := h.Evaluate(scoring.Input{Profile: demo, Job: job("React Developer", "react hooks")})

			Convey("Then it counts twice but is listed once", func() {
				// title 3 + desc 1 + react 3 = 7 -> 0.28
				So(res.Score, ShouldEqual, 28)
				So(res.Reason, ShouldEqual, "matched skills: React")
			})
		})

		Convey("When the job mentions AI but the candidate has React", func() {
			res := h.Evaluate(scoring.Input{Profile: demo, Job: job("AI Engineer", "React dashboards for ml models")})

			Convey("Then the AI cap does not apply", func() {
				// desc react 1 + ai 1 + ml 1 + react 3 = 6 -> 0.24
				So(res.Score, ShouldEqual, 24)
			})
		})
	})

	Convey("Given a profile without React or Node", t, func() {
		profile := model.CandidateProfile{Skills: []string{"Python", "Docker", "Kubernetes", "AWS"}}

		Convey("When the job mentions AI and otherwise fits well", func() {
			res := h.Evaluate(scoring.Input{Profile: profile, Job: job(
				"AI Platform Engineer Docker Kubernetes AWS",
				"docker kubernetes aws ai",
			)})

			Convey("Then the score is capped at 45", func() {
				// 9 + 3 + 1 + 6 = 19 -> 0.76, capped
				So(res.Score, ShouldEqual, 45)
				So(res.Reason, ShouldEqual, "matched skills: Docker, Kubernetes, AWS")
			})
		})

		Convey("When the job is full stack", func() {
			res := h.Evaluate(scoring.Input{Profile: profile, Job: job("Full Stack Engineer", "")})

			Convey("Then no full stack floor applies", func() {
				So(res.Score, ShouldEqual, 16)
			})
		})
	})

	Convey("Given arbitrary inputs", t, func() {
		inputs := []model.JobPosting{
			job("", ""),
			job("AI ML NLP", "ai ml nlp"),
			job("Senior Staff Principal Kubernetes AWS Docker", "kubernetes aws docker ci cd ci/cd rest express"),
		}
		for _, j := range inputs {
			res := h.Evaluate(scoring.Input{Profile: model.DemoProfile(), Job: j})
			So(res.Score, ShouldBeBetweenOrEqual, 0, 100)
			So(res.Reason, ShouldNotBeEmpty)
		}
	})
}

type stubScorer struct {
	res   scoring.Result
	err   error
	delay time.Duration
	panic bool
	calls int
}

func (s *stubScorer) Name() string { return "stub" }

func (s *stubScorer) Score(ctx context.Context, _ scoring.Input) (scoring.Result, error) {
	s.calls++
	if s.panic {
		panic("backend exploded")
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.res, s.err
}

func TestResilient_Score(t *testing.T) {
	in := scoring.Input{Profile: model.DemoProfile(), Job: job("Frontend Developer", "TypeScript and CSS")}
	ctx := context.Background()

	Convey("Given no backend", t, func() {
		r := scoring.NewResilient(nil)

		Convey("Then the heuristic is used directly", func() {
			res, err := r.Score(ctx, in)
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 78)
			So(r.Name(), ShouldEqual, "heuristic")
			So(r.HasBackend(), ShouldBeFalse)
		})
	})

	Convey("Given a healthy backend", t, func() {
		backend := &stubScorer{res: scoring.Result{Score: 91, Reason: "strong React fit"}}
		r := scoring.NewResilient(backend)

		Convey("Then its result is returned", func() {
			res, err := r.Score(ctx, in)
			So(err, ShouldBeNil)
			So(res, ShouldResemble, scoring.Result{Score: 91, Reason: "strong React fit"})
			So(r.Name(), ShouldEqual, "stub")
		})
	})

	Convey("Given a failing backend", t, func() {
		r := scoring.NewResilient(&stubScorer{err: errors.New("401 unauthorized")})

		Convey("Then the heuristic result is returned without error", func() {
			res, err := r.Score(ctx, in)
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 78)
		})
	})

	Convey("Given a backend slower than the timeout", t, func() {
		r := scoring.NewResilient(&stubScorer{delay: time.Second, res: scoring.Result{Score: 99}},
			scoring.WithTimeout(20*time.Millisecond))

		Convey("Then the call returns within the bound with the heuristic result", func() {
			start := time.Now()
			res, err := r.Score(ctx, in)
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 78)
			So(time.Since(start), ShouldBeLessThan, 500*time.Millisecond)
		})
	})

	Convey("Given a panicking backend", t, func() {
		r := scoring.NewResilient(&stubScorer{panic: true})

		Convey("Then the panic is contained", func() {
			var res scoring.Result
			So(func() { res, _ = r.Score(ctx, in) }, ShouldNotPanic)
			So(res.Score, ShouldEqual, 78)
		})
	})

	Convey("Given a backend returning an out-of-range score", t, func() {
		r := scoring.NewResilient(&stubScorer{res: scoring.Result{Score: 250}})

		Convey("Then the result is rejected in favour of the heuristic", func() {
			res, err := r.Score(ctx, in)
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 78)
		})
	})
}

func TestClamp(t *testing.T) {
	Convey("Given scores outside the range", t, func() {
		So(scoring.Clamp(-5), ShouldEqual, 0)
		So(scoring.Clamp(150), ShouldEqual, 100)
		So(scoring.Clamp(42), ShouldEqual, 42)
	})
}
