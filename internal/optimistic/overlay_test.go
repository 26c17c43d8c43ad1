package optimistic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlayValue(t *testing.T) {
	o := New[string, string]()

	assert.Equal(t, "new", o.Value("1001", "new"))

	o.Propose("1001", "packed", "new")
	assert.Equal(t, "packed", o.Value("1001", "new"))
	assert.True(t, o.Pending("1001"))
	assert.False(t, o.Pending("1002"))
}

func TestOverlayReconcileByValue(t *testing.T) {
	o := New[string, string]()
	o.Propose("1001", "packed", "new")
	o.Propose("1001", "shipped", "new")

	cleared := o.Reconcile("1001", "packed")
	assert.False(t, cleared, "server still behind the latest proposal")
	assert.Equal(t, "shipped", o.Value("1001", "packed"))

	cleared = o.Reconcile("1001", "shipped")
	assert.True(t, cleared)
	assert.Equal(t, 0, o.Len())
}

func TestOverlayReject(t *testing.T) {
	o := New[string, string]()

	t.Run("latest proposal rolls back to base", func(t *testing.T) {
		tok := o.Propose("1001", "packed", "new")
		base, ok := o.Reject("1001", tok)
		require.True(t, ok)
		assert.Equal(t, "new", base)
		assert.False(t, o.Pending("1001"))
	})

	t.Run("superseded proposal is ignored", func(t *testing.T) {
		first := o.Propose("1002", "packed", "new")
		o.Propose("1002", "shipped", "new")

		_, ok := o.Reject("1002", first)
		assert.False(t, ok)
		assert.Equal(t, "shipped", o.Value("1002", "new"))
	})

	t.Run("base follows reconciled server value", func(t *testing.T) {
		tok := o.Propose("1003", "shipped", "new")
		o.Reconcile("1003", "packed")
		base, ok := o.Reject("1003", tok)
		require.True(t, ok)
		assert.Equal(t, "packed", base)
	})
}

func TestOverlayKeys(t *testing.T) {
	o := New[int, bool]()
	o.Propose(1, true, false)
	o.Propose(2, true, false)
	assert.ElementsMatch(t, []int{1, 2}, o.Keys())
}
