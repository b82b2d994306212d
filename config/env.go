package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the settings that are only ever read from the environment.
//
// Env is excluded from yaml and json output of Config; keep it that way so
// `config show` never prints a secret.
type Env struct {
	GitHubToken  string `env:"GITHUB_TOKEN"`
	MailUsername string `env:"CONTRIBS_MAIL_USERNAME"`
	MailPassword string `env:"CONTRIBS_MAIL_PASSWORD"`
	UseEmail     *bool  `env:"CONTRIBS_USE_EMAIL"`
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}
