package service_test

import (
	"testing"

	service "github.com/okian/autoapply/internal/app"
	"github.com/okian/autoapply/internal/domain/model"
	"github.com/okian/autoapply/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func postings(ids ...string) []model.JobPosting {
	jobs := make([]model.JobPosting, 0, len(ids))
	for _, id := range ids {
		jobs = append(jobs, model.JobPosting{ID: id, Title: "Title " + id, Company: "Co " + id})
	}
	return jobs
}

func TestRank(t *testing.T) {
	Convey("Given scored postings", t, func() {
		jobs := postings("a", "b", "c", "d")
		results := []scoring.Result{
			{Score: 40, Reason: "meh"},
			{Score: 90, Reason: ""},
			{Score: 40, Reason: "tie"},
			{Score: 75, Reason: "good"},
		}

		Convey("When ranking the top three", func() {
			ranked := service.Rank(jobs, results, 3)

			Convey("Then they are ordered by score and cut to three", func() {
				So(jobIDs(ranked), ShouldResemble, []string{"b", "d", "a"})
				So(ranked[0].MatchScore, ShouldEqual, 0.9)
				So(ranked[1].MatchScore, ShouldEqual, 0.75)
				So(ranked[2].MatchScore, ShouldEqual, 0.4)
			})

			Convey("And an empty reason becomes ai-score", func() {
				So(ranked[0].Reason, ShouldEqual, service.ReasonAIScore)
				So(ranked[1].Reason, ShouldEqual, "good")
			})

			Convey("And every match is pending with the posting's title and company", func() {
				for _, m := range ranked {
					So(m.Status, ShouldEqual, model.MatchPending)
					So(m.Title, ShouldEqual, "Title "+m.JobID)
					So(m.Company, ShouldEqual, "Co "+m.JobID)
				}
			})
		})

		Convey("When ranking more than there are postings", func() {
			ranked := service.Rank(jobs, results, 10)

			Convey("Then ties keep source order", func() {
				So(jobIDs(ranked), ShouldResemble, []string{"b", "d", "a", "c"})
			})
		})

		Convey("When topN is zero", func() {
			So(service.Rank(jobs, results, 0), ShouldBeEmpty)
		})
	})

	Convey("Given out-of-range scores", t, func() {
		ranked := service.Rank(postings("x", "y"), []scoring.Result{{Score: 140}, {Score: -3}}, 3)

		Convey("Then scores are clamped to [0,1]", func() {
			So(ranked[0].MatchScore, ShouldEqual, 1.0)
			So(ranked[1].MatchScore, ShouldEqual, 0.0)
		})
	})
}

func TestFallbackRanking(t *testing.T) {
	Convey("Given postings in source order", t, func() {
		jobs := postings("p1", "p2", "p3", "p4")

		Convey("When building the synthetic ranking for three", func() {
			ranked := service.FallbackRanking(jobs, 3)

			Convey("Then the first three get 0.9, 0.8 and 0.7", func() {
				So(jobIDs(ranked), ShouldResemble, []string{"p1", "p2", "p3"})
				So(ranked[0].MatchScore, ShouldEqual, 0.9)
				So(ranked[1].MatchScore, ShouldEqual, 0.8)
				So(ranked[2].MatchScore, ShouldEqual, 0.7)
				for _, m := range ranked {
					So(m.Reason, ShouldEqual, service.ReasonFallback)
					So(m.Status, ShouldEqual, model.MatchPending)
				}
			})
		})

		Convey("When more are requested than exist", func() {
			So(service.FallbackRanking(jobs, 10), ShouldHaveLength, 4)
		})
	})

	Convey("Given more than ten postings", t, func() {
		ids := make([]string, 12)
		for i := range ids {
			ids[i] = string(rune('a' + i))
		}
		ranked := service.FallbackRanking(postings(ids...), 12)

		Convey("Then synthetic scores never go below zero", func() {
			for _, m := range ranked {
				So(m.MatchScore, ShouldBeGreaterThanOrEqualTo, 0)
			}
			So(ranked[11].MatchScore, ShouldEqual, 0.0)
		})
	})

	Convey("Given no postings", t, func() {
		So(service.FallbackRanking(nil, 3), ShouldBeEmpty)
	})
}

func TestApply(t *testing.T) {
	Convey("Given pending matches", t, func() {
		matches := []model.MatchResult{
			{JobID: "a", MatchScore: 0.82, Status: model.MatchPending, Reason: "matched skills: React"},
			{JobID: "b", MatchScore: 0.70, Status: model.MatchPending, Reason: ""},
			{JobID: "c", MatchScore: 0.69, Status: model.MatchPending, Reason: "low skill overlap"},
		}

		Convey("When applying at 0.70", func() {
			out := service.Apply(matches, 0.70)

			Convey("Then scores at or above the threshold are applied", func() {
				So(out[0].Status, ShouldEqual, model.MatchApplied)
				So(out[0].Reason, ShouldEqual, "matched skills: React")
				So(out[1].Status, ShouldEqual, model.MatchApplied)
				So(out[1].Reason, ShouldEqual, service.ReasonApplied)
			})

			Convey("And the rest are skipped as below threshold", func() {
				So(out[2].Status, ShouldEqual, model.MatchSkipped)
				So(out[2].Reason, ShouldEqual, service.ReasonBelowThreshold)
			})

			Convey("And the input is left untouched", func() {
				for _, m := range matches {
					So(m.Status, ShouldEqual, model.MatchPending)
				}
				So(matches[2].Reason, ShouldEqual, "low skill overlap")
			})
		})

		Convey("When applying at 1", func() {
			out := service.Apply(matches, 1)
			for _, m := range out {
				So(m.Status, ShouldEqual, model.MatchSkipped)
			}
		})
	})
}
