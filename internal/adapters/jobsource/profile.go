package jobsource

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/autoapply/internal/domain/model"
)

// LoadProfile reads a YAML candidate profile. An empty path returns the demo profile.
func LoadProfile(path string) (model.CandidateProfile, error) {
	if path == "" {
		return model.DemoProfile(), nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return model.CandidateProfile{}, fmt.Errorf("%w: %s: %w", ErrProfileLoad, path, err)
	}

	var p model.CandidateProfile
	if err := k.UnmarshalWithConf("", &p, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return model.CandidateProfile{}, fmt.Errorf("%w: %s: %w", ErrProfileLoad, path, err)
	}
	if len(p.Skills) == 0 {
		return model.CandidateProfile{}, fmt.Errorf("%w: %s: no skills listed", ErrProfileLoad, path)
	}
	return p, nil
}
