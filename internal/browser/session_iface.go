package browser

import (
	"github.com/jonathan/apply-agent/internal/formfill"
	"github.com/jonathan/apply-agent/internal/pagewatch"
)

var (
	_ pagewatch.PageReader = (*Session)(nil)
	_ formfill.Evaluator   = (*Session)(nil)
)
