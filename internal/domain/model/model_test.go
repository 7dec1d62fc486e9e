package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/autoapply/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRunSnapshot(t *testing.T) {
	convey.Convey("Given a run snapshot with jobs", t, func() {
		snap := model.RunSnapshot{
			RunID:     "run-1",
			Status:    model.RunMatchingComplete,
			Threshold: 0.7,
			Jobs: []model.MatchResult{
				{JobID: "j1", Title: "Full Stack Engineer", MatchScore: 0.9, Status: model.MatchPending},
			},
		}

		convey.Convey("When cloning and mutating the clone", func() {
			clone := snap.Clone()
			clone.Jobs[0].Status = model.MatchApplied

			convey.Convey("Then the original is untouched", func() {
				convey.So(snap.Jobs[0].Status, convey.ShouldEqual, model.MatchPending)
				convey.So(clone.RunID, convey.ShouldEqual, "run-1")
			})
		})

		convey.Convey("When cloning a snapshot without jobs", func() {
			empty := model.RunSnapshot{RunID: "run-2", Status: model.RunProcessing}.Clone()
			b, err := json.Marshal(empty)

			convey.Convey("Then jobs encode as an empty array and error is omitted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(b), convey.ShouldEqual, `{"runId":"run-2","status":"processing","threshold":0,"jobs":[]}`)
			})
		})
	})
}

func TestRunStatus(t *testing.T) {
	convey.Convey("Given the run statuses", t, func() {
		convey.So(model.RunProcessing.Terminal(), convey.ShouldBeFalse)
		convey.So(model.RunMatchingComplete.Terminal(), convey.ShouldBeFalse)
		convey.So(model.RunCompleted.Terminal(), convey.ShouldBeTrue)
		convey.So(model.RunFailed.Terminal(), convey.ShouldBeTrue)
		convey.So(model.AllRunStatuses(), convey.ShouldHaveLength, 4)
	})
}

func TestRunRecordFields(t *testing.T) {
	convey.Convey("Given a run record", t, func() {
		convey.Convey("When only the update timestamp is set", func() {
			rec := model.RunRecord{
				RunID:     "run-1",
				Status:    model.RunCompleted,
				Threshold: 0.7,
				UpdatedAt: time.UnixMilli(1700000000000),
			}
			f := rec.Fields()

			convey.Convey("Then unset fields are left out for merge writes", func() {
				convey.So(f, convey.ShouldContainKey, "updatedAt")
				convey.So(f, convey.ShouldNotContainKey, "createdAt")
				convey.So(f, convey.ShouldNotContainKey, "userId")
				convey.So(f, convey.ShouldNotContainKey, "error")
				convey.So(f["status"], convey.ShouldEqual, "completed")
				convey.So(f["updatedAt"], convey.ShouldEqual, int64(1700000000000))
			})
		})

		convey.Convey("When jobs are present", func() {
			rec := model.RunRecord{
				UserID: "demo-user",
				Jobs:   []model.MatchResult{{JobID: "j1", MatchScore: 0.8, Status: model.MatchSkipped, Reason: "below-threshold"}},
			}
			jobs, ok := rec.Fields()["jobs"].([]map[string]any)

			convey.Convey("Then they are flattened to documents", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(jobs, convey.ShouldHaveLength, 1)
				convey.So(jobs[0]["status"], convey.ShouldEqual, "skipped")
				convey.So(jobs[0]["reason"], convey.ShouldEqual, "below-threshold")
			})
		})
	})
}

func TestDemoProfile(t *testing.T) {
	convey.Convey("Given the demo profile", t, func() {
		p := model.DemoProfile()
		convey.So(p.Name, convey.ShouldEqual, "Demo Candidate")
		convey.So(p.Skills, convey.ShouldContain, "React")
		convey.So(p.Skills, convey.ShouldContain, "CI/CD")
		convey.So(p.ExperienceYears, convey.ShouldEqual, 4)
	})
}
