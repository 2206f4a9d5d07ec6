package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Clamps(t *testing.T) {
	p := New(0, 0)
	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit, Offset: 0}, p)

	p = New(3, 500)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 200, p.Offset)

	p = New(2, 10)
	assert.Equal(t, 10, p.Offset)
}
