package question

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		prompts []string
		wantErr bool
	}{
		{name: "valid", prompts: []string{"One?", "Two?"}},
		{name: "empty list", prompts: nil, wantErr: true},
		{name: "blank prompt", prompts: []string{"One?", "   "}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank, err := New(tt.prompts)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, bank)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.prompts), bank.Count())
		})
	}
}

func TestBankIsImmutable(t *testing.T) {
	prompts := []string{"First?", "Second?"}
	bank, err := New(prompts)
	require.NoError(t, err)

	prompts[0] = "changed"
	all := bank.All()
	all[1] = "changed too"

	q, err := bank.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "First?", q)

	q, err = bank.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Second?", q)
}

func TestGetOutOfRange(t *testing.T) {
	bank := Default()

	for _, idx := range []int{-1, bank.Count(), 100} {
		_, err := bank.Get(idx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIndex))

		var idxErr *IndexError
		require.True(t, errors.As(err, &idxErr))
		assert.Equal(t, idx, idxErr.Index)
		assert.Equal(t, 4, idxErr.Count)
	}
}

func TestDefault(t *testing.T) {
	bank := Default()
	require.Equal(t, 4, bank.Count())

	first, err := bank.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "Tell me about yourself.", first)
}
