package room

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockExistsStore struct {
	mock.Mock
	*memStore
}

func newMockExistsStore() *mockExistsStore {
	return &mockExistsStore{memStore: newMemStore()}
}

func (m *mockExistsStore) Exists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func TestGenerateName(t *testing.T) {
	ctx := context.Background()

	t.Run("produces an adjective-noun slug", func(t *testing.T) {
		name, err := GenerateName(ctx, newMemStore())
		require.NoError(t, err)

		parts := strings.Split(name, "-")
		require.Len(t, parts, 2)
		assert.Contains(t, nameAdjectives, parts[0])
		assert.Contains(t, nameNouns, parts[1])
	})

	t.Run("retries past a collision", func(t *testing.T) {
		s := newMockExistsStore()
		s.On("Exists", mock.Anything, mock.AnythingOfType("string")).Return(true, nil).Once()
		s.On("Exists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Once()

		name, err := GenerateName(ctx, s)
		require.NoError(t, err)
		assert.NotEmpty(t, name)
		s.AssertExpectations(t)
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		s := newMockExistsStore()
		s.On("Exists", mock.Anything, mock.AnythingOfType("string")).Return(true, nil).Times(maxNameAttempts)

		_, err := GenerateName(ctx, s)
		assert.ErrorIs(t, err, ErrNameSpaceExhausted)
		s.AssertExpectations(t)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		s := newMockExistsStore()
		s.On("Exists", mock.Anything, mock.AnythingOfType("string")).Return(false, assert.AnError)

		_, err := GenerateName(ctx, s)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
