package shortener

import (
	"fmt"
	"sync"

	"github.com/jaevor/go-nanoid"
)

// CodeGenerator produces candidate short codes. Uniqueness is checked by the caller.
type CodeGenerator interface {
	Generate() (Code, error)
}

// GeneratorFunc adapts a function to CodeGenerator.
type GeneratorFunc func() (Code, error)

func (f GeneratorFunc) Generate() (Code, error) {
	return f()
}

type nanoidSource struct {
	next func() string
}

// NanoidGenerator draws codes uniformly from Alphabet using crypto/rand.
// Generator state is pooled so concurrent callers do not contend on one source.
type NanoidGenerator struct {
	length int
	pool   sync.Pool
}

// NewNanoidGenerator creates a generator for codes of the given length.
func NewNanoidGenerator(length int) (*NanoidGenerator, error) {
	if _, err := nanoid.CustomASCII(Alphabet, length); err != nil {
		return nil, fmt.Errorf("invalid code length %d: %w", length, err)
	}

	g := &NanoidGenerator{length: length}
	g.pool.New = func() any {
		next, _ := nanoid.CustomASCII(Alphabet, length)

		return &nanoidSource{next: next}
	}

	return g, nil
}

// Length returns the length of generated codes.
func (g *NanoidGenerator) Length() int {
	return g.length
}

// Generate returns a new candidate code.
// nanoid panics when crypto/rand fails; that is reported as ErrGenerationUnavailable.
func (g *NanoidGenerator) Generate() (code Code, err error) {
	src, _ := g.pool.Get().(*nanoidSource)

	defer func() {
		if r := recover(); r != nil {
			code = ""
			err = fmt.Errorf("%w: %v", ErrGenerationUnavailable, r)

			return
		}

		g.pool.Put(src)
	}()

	return Code(src.next()), nil
}
