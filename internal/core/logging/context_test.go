package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetListID(ctx))
	assert.Empty(t, GetOp(ctx))

	ctx = WithListID(ctx, "groceries")
	ctx = WithOp(ctx, "move")

	assert.Equal(t, "groceries", GetListID(ctx))
	assert.Equal(t, "move", GetOp(ctx))
}
