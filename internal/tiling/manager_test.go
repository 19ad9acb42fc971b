package tiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_FocusedWorkspace(t *testing.T) {
	m := NewManager()
	assert.Nil(t, m.FocusedWorkspace())

	m.AddWorkspace(NewWorkspace(1, Display{BBox: fullHD}))
	m.AddWorkspace(NewWorkspace(2, Display{BBox: fullHD}))
	assert.Nil(t, m.FocusedWorkspace(), "adding must not focus")

	require.True(t, m.Focus(2))
	ws := m.FocusedWorkspace()
	require.NotNil(t, ws)
	assert.Equal(t, WorkspaceID(2), ws.ID)

	assert.False(t, m.Focus(99))
	assert.Equal(t, WorkspaceID(2), m.FocusedWorkspace().ID)
	assert.Equal(t, 2, m.Len())
}

func TestManager_MutationThroughFocusedWorkspace(t *testing.T) {
	m := NewManager()
	m.AddWorkspace(NewWorkspace(1, Display{BBox: fullHD}))
	m.Focus(1)

	m.FocusedWorkspace().AddTile(NewTile(0, Window{}))

	assert.Equal(t, 1, m.WorkspaceByID(1).Len())
}

func TestManager_RemoveWorkspace(t *testing.T) {
	m := NewManager()
	m.AddWorkspace(NewWorkspace(1, Display{}))
	m.AddWorkspace(NewWorkspace(2, Display{}))
	m.Focus(1)

	assert.True(t, m.RemoveWorkspace(2))
	assert.Equal(t, WorkspaceID(1), m.FocusedWorkspace().ID)

	assert.True(t, m.RemoveWorkspace(1))
	assert.Nil(t, m.FocusedWorkspace())
	_, ok := m.FocusedWorkspaceID()
	assert.False(t, ok)

	assert.False(t, m.RemoveWorkspace(1))
	assert.Zero(t, m.Len())
}

func TestManager_FocusConsistencyOnTileRemoval(t *testing.T) {
	m := NewManager()
	ws := NewWorkspace(1, Display{BBox: fullHD})
	m.AddWorkspace(ws)
	m.Focus(1)
	for _, tile := range tilesWithIDs(0, 1, 2) {
		ws.AddTile(tile)
	}

	m.FocusedWorkspace().RemoveTileByID(0)
	assert.Equal(t, TileID(2), m.FocusedWorkspace().FocusedTile().ID)

	m.FocusedWorkspace().RemoveTileByID(2)
	assert.Nil(t, m.FocusedWorkspace().FocusedTile())
}

func TestManager_WorkspacesIsCopy(t *testing.T) {
	m := NewManager()
	m.AddWorkspace(NewWorkspace(1, Display{}))

	list := m.Workspaces()
	list[0] = nil

	assert.NotNil(t, m.WorkspaceByID(1))
	assert.Panics(t, func() { m.AddWorkspace(nil) })
}
