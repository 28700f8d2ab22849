package sheet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/misinfo-cli/pkg/sheets"
	"github.com/sells-group/misinfo-cli/pkg/sheets/mocks"
)

func TestGoogle_Read(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("GetValues", mock.Anything, "ss", "'data'").Return([][]string{{"ID"}, {"a1"}}, nil)

	rows, err := NewGoogle(client, "ss").Read(context.Background(), "data")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"ID"}, {"a1"}}, rows)
}

func TestGoogle_ReadMissingSheet(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("GetValues", mock.Anything, "ss", "'data'").Return(nil, sheets.ErrSheetNotFound)

	_, err := NewGoogle(client, "ss").Read(context.Background(), "data")
	assert.True(t, IsNotFound(err))
}

func TestGoogle_Write(t *testing.T) {
	client := mocks.NewMockClient(t)
	rows := [][]string{{"a1"}}
	client.On("UpdateValues", mock.Anything, "ss", "'data'!A5", rows).Return(nil)

	g := NewGoogle(client, "ss")
	require.NoError(t, g.Write(context.Background(), "data", 5, rows))
	require.NoError(t, g.Write(context.Background(), "data", 5, nil))
}

func TestGoogle_Replace(t *testing.T) {
	client := mocks.NewMockClient(t)
	rows := [][]string{{"Politics"}, {"news"}}
	client.On("ClearValues", mock.Anything, "ss", "'subreddits'").Return(nil)
	client.On("UpdateValues", mock.Anything, "ss", "'subreddits'!A1", rows).Return(nil)

	require.NoError(t, NewGoogle(client, "ss").Replace(context.Background(), "subreddits", rows))
}

func TestGoogle_ReplaceClearFails(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("ClearValues", mock.Anything, "ss", "'subreddits'").Return(errors.New("boom"))

	err := NewGoogle(client, "ss").Replace(context.Background(), "subreddits", nil)
	require.Error(t, err)
	client.AssertNotCalled(t, "UpdateValues", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGoogle_Ensure(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("SheetTitles", mock.Anything, "ss").Return([]string{"data"}, nil)
	client.On("AddSheet", mock.Anything, "ss", "user_data").Return(nil).Once()

	g := NewGoogle(client, "ss")
	require.NoError(t, g.Ensure(context.Background(), "data"))
	require.NoError(t, g.Ensure(context.Background(), "user_data"))
}
