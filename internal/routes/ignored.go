package routes

import (
	"math/rand/v2"
	"strconv"

	"github.com/a-h/templ"
)

// ignored is dot-prefixed, so the default ignore patterns keep it off the
// router. Its loader is not idempotent.
type ignored struct{}

func (ignored) Loader() float64 {
	return rand.Float64()
}

func (ignored) Page(n float64) templ.Component {
	return ignoredView(strconv.FormatFloat(n, 'f', -1, 64))
}
