// Package prompttest builds a prompt pipeline over the shipped templates for
// tests of the outer services.
package prompttest

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imkonsowa/waiter-prompts/assembler"
	"github.com/imkonsowa/waiter-prompts/intent"
	"github.com/imkonsowa/waiter-prompts/prompt"
	"github.com/imkonsowa/waiter-prompts/slots"
	"github.com/imkonsowa/waiter-prompts/templates"
	"github.com/imkonsowa/waiter-prompts/weather"
)

// Passthrough returns its input unchanged.
type Passthrough struct{}

func (Passthrough) Tokenize(text string) string     { return text }
func (Passthrough) LoadUserDictionary(string) error { return nil }
func (Passthrough) ReloadUserDictionary() error     { return nil }

// TemplatesFile is the catalogue shipped with the repository.
func TemplatesFile() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "templates", "prompt_templates.yaml")
}

// NewBuilder returns a builder and its catalogue. Weather comes from the
// static table; history and conversations are disabled.
func NewBuilder(t *testing.T, opts prompt.Options) (*prompt.Builder, *templates.Catalog) {
	t.Helper()

	catalog, err := templates.LoadCatalog(TemplatesFile())
	require.NoError(t, err)
	classifier, err := intent.NewClassifier(intent.DefaultRules())
	require.NoError(t, err)
	selector, err := templates.NewSelector(templates.DefaultIntentTable(), catalog)
	require.NoError(t, err)
	asm, err := assembler.New(assembler.DefaultTables())
	require.NoError(t, err)

	builder, err := prompt.New(prompt.Deps{
		Tokenizer:  Passthrough{},
		Extractor:  slots.NewExtractor(slots.DefaultCatalog()),
		Classifier: classifier,
		Selector:   selector,
		Assembler:  asm,
		Renderer:   templates.NewRenderer(catalog),
		Weather:    weather.NewStatic(nil),
	}, opts)
	require.NoError(t, err)

	return builder, catalog
}
