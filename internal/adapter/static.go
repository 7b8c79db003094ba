package adapter

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"cryptosim/internal/domain"
)

// StaticQuoteProvider serves quotes from a YAML file. It is re-read on every
// fetch so edits show up on the next refresh.
type StaticQuoteProvider struct {
	path string
}

type quoteFile struct {
	Quotes []domain.Quote `yaml:"quotes"`
}

// NewStaticQuoteProvider creates a provider backed by path
func NewStaticQuoteProvider(path string) *StaticQuoteProvider {
	return &StaticQuoteProvider{path: path}
}

func (p *StaticQuoteProvider) Name() string {
	return "static"
}

func (p *StaticQuoteProvider) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, errors.Wrapf(err, "read quotes file %s", p.path)
	}

	var file quoteFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrapf(err, "parse quotes file %s", p.path)
	}
	return file.Quotes, nil
}
