package v2md

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionRenew(t *testing.T) {
	sess := NewSession("100")
	assert.Equal(t, "100", sess.Token())
	assert.False(t, sess.Stale())

	sess.Renew("101")
	assert.Equal(t, "101", sess.Token())
	assert.Equal(t, 1, sess.Version)

	sess.Renew("")
	assert.True(t, sess.Stale())
	assert.Equal(t, 2, sess.Version, "an empty renewal still counts")
}
