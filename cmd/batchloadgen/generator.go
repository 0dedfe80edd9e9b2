package main

import (
	"bytes"
	"os"
	"text/template"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"golang.org/x/tools/imports"
)

const loaderPackage = "github.com/fetchkit/batchloader"

type config struct {
	Name      string
	KeyType   string
	ValueType string
	Package   string
	FileName  string
}

func (c *config) validate() error {
	var errs *multierror.Error
	if c.Name == "" {
		errs = multierror.Append(errs, errors.New("-name is required"))
	}
	if c.KeyType == "" {
		errs = multierror.Append(errs, errors.New("-keyType is required"))
	}
	if c.ValueType == "" {
		errs = multierror.Append(errs, errors.New("-valueType is required"))
	}
	if c.Package == "" {
		errs = multierror.Append(errs, errors.New("-package is required"))
	}
	return errs.ErrorOrNil()
}

func (c *config) applyDefaults() {
	if c.FileName == "" {
		c.FileName = strcase.ToSnake(c.Name) + "_gen.go"
	}
}

type templateData struct {
	*config
	LoaderPkg string
}

var loaderTemplate = template.Must(template.New("loader").Parse(`// Code generated by batchloadgen; DO NOT EDIT.

package {{.Package}}

import (
	"{{.LoaderPkg}}"
)

// {{.Name}} batches and caches {{.ValueType}} lookups keyed by {{.KeyType}}.
type {{.Name}} struct {
	batchloader.BatchLoader[{{.KeyType}}, {{.ValueType}}]
}

// New{{.Name}} creates a {{.Name}} with the given fetch function.
func New{{.Name}}(fetch func(keys []{{.KeyType}}) ([]*{{.ValueType}}, []error), opts ...batchloader.Option[{{.KeyType}}, {{.ValueType}}]) *{{.Name}} {
	return &{{.Name}}{
		BatchLoader: batchloader.New(batchloader.Fetch[{{.KeyType}}, {{.ValueType}}](fetch), opts...),
	}
}
`))

// render produces the formatted source for the typed loader.
func render(cfg *config) ([]byte, error) {
	var buf bytes.Buffer
	if err := loaderTemplate.Execute(&buf, templateData{config: cfg, LoaderPkg: loaderPackage}); err != nil {
		return nil, errors.Wrap(err, "executing loader template")
	}
	src, err := imports.Process(cfg.FileName, buf.Bytes(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "formatting generated code")
	}
	return src, nil
}

func generate(cfg *config) error {
	src, err := render(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.FileName, src, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", cfg.FileName)
	}
	return nil
}
