package confirm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApproved(t *testing.T) {
	ctx := context.Background()
	p := Prompt{Action: "clear-cart", Message: "Kosongkan keranjang?"}

	assert.False(t, Approved(ctx, nil, p))
	assert.True(t, Approved(ctx, Always, p))
	assert.False(t, Approved(ctx, Never, p))

	var seen Prompt
	f := Func(func(_ context.Context, got Prompt) bool {
		seen = got
		return true
	})
	assert.True(t, Approved(ctx, f, p))
	assert.Equal(t, p, seen)
}
