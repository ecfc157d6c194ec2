package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDRoundTrip(t *testing.T) {
	assert.Empty(t, GetRequestIDFromCtx(context.Background()))

	ctx := WithRqID(context.Background())
	first := GetRequestIDFromCtx(ctx)
	assert.Len(t, first, 36)

	second := GetRequestIDFromCtx(WithRqID(ctx))
	assert.NotEqual(t, first, second)
}
