package jobsource_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/autoapply/internal/adapters/jobsource"
	. "github.com/smartystreets/goconvey/convey"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSource(t *testing.T) {
	ctx := context.Background()

	Convey("Given a file source", t, func() {
		Convey("When the file holds valid postings", func() {
			path := writeFile(t, "jobs.json", `[
				{"id":"a","title":"Frontend Developer","company":"X","description":"TypeScript"},
				{"id":"b","title":"Backend Engineer","company":"Y","description":"Go"}
			]`)
			jobs, err := jobsource.NewFileSource(path).Load(ctx)

			Convey("Then they are decoded in order", func() {
				So(err, ShouldBeNil)
				So(jobs, ShouldHaveLength, 2)
				So(jobs[0].ID, ShouldEqual, "a")
				So(jobs[1].Company, ShouldEqual, "Y")
			})
		})

		Convey("When the file is missing", func() {
			_, err := jobsource.NewFileSource("/non/existent/jobs.json").Load(ctx)

			Convey("Then the source is unavailable", func() {
				So(errors.Is(err, jobsource.ErrSourceUnavailable), ShouldBeTrue)
			})
		})

		Convey("When the file is not JSON", func() {
			path := writeFile(t, "jobs.json", `not json`)
			_, err := jobsource.NewFileSource(path).Load(ctx)

			Convey("Then the source is unavailable", func() {
				So(errors.Is(err, jobsource.ErrSourceUnavailable), ShouldBeTrue)
			})
		})

		Convey("When a posting misses required fields", func() {
			path := writeFile(t, "jobs.json", `[{"id":"a","title":"Engineer"}]`)
			_, err := jobsource.NewFileSource(path).Load(ctx)

			Convey("Then the schema rejects it", func() {
				So(errors.Is(err, jobsource.ErrSourceUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "company")
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := jobsource.NewFileSource("/non/existent/jobs.json").Load(cctx)

			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestEmbedded(t *testing.T) {
	Convey("Given the embedded fixture", t, func() {
		jobs := jobsource.Embedded()

		Convey("Then it has at least three postings with ids", func() {
			So(len(jobs), ShouldBeGreaterThanOrEqualTo, 3)
			for _, j := range jobs {
				So(j.ID, ShouldNotBeEmpty)
			}
		})

		Convey("Then each call returns an independent copy", func() {
			jobs[0].Title = "changed"
			So(jobsource.Embedded()[0].Title, ShouldNotEqual, "changed")
		})

		Convey("Then New with no path serves it", func() {
			loaded, err := jobsource.New("").Load(context.Background())
			So(err, ShouldBeNil)
			So(loaded, ShouldResemble, jobsource.Embedded())
		})
	})
}

func TestLoadProfile(t *testing.T) {
	Convey("Given profile files", t, func() {
		Convey("When no path is configured", func() {
			p, err := jobsource.LoadProfile("")
			So(err, ShouldBeNil)
			So(p.Name, ShouldEqual, "Demo Candidate")
		})

		Convey("When the YAML profile is valid", func() {
			path := writeFile(t, "profile.yaml", `
name: Jane Doe
skills: [Go, Docker, Kubernetes]
experience_years: 7
preferences:
  locations: [Remote]
`)
			p, err := jobsource.LoadProfile(path)

			Convey("Then every field is read", func() {
				So(err, ShouldBeNil)
				So(p.Name, ShouldEqual, "Jane Doe")
				So(p.Skills, ShouldResemble, []string{"Go", "Docker", "Kubernetes"})
				So(p.ExperienceYears, ShouldEqual, 7)
				So(p.Preferences.Locations, ShouldResemble, []string{"Remote"})
			})
		})

		Convey("When the profile lists no skills", func() {
			path := writeFile(t, "profile.yaml", "name: Nobody\n")
			_, err := jobsource.LoadProfile(path)
			So(errors.Is(err, jobsource.ErrProfileLoad), ShouldBeTrue)
		})

		Convey("When the file is missing", func() {
			_, err := jobsource.LoadProfile("/non/existent/profile.yaml")
			So(errors.Is(err, jobsource.ErrProfileLoad), ShouldBeTrue)
		})
	})
}
