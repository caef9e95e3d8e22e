package ports

import (
	"context"
	"testing"
	"time"

	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCheckpointStoreContract runs a suite of tests to verify that a
// CheckpointStore implementation adheres to the interface contract. Every
// backend (memory, Redis, ...) runs this same suite.
func RunCheckpointStoreContract(t *testing.T, store CheckpointStore) {
	ctx := context.Background()
	threadID := "contract-test-thread-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := dialog.NewState()
		state.UserInfo = "wants a quiet build"
		state.DialogStack = []dialog.Skill{dialog.SkillBuildPC}
		state.Append(
			dialog.NewUserMessage("build me a pc"),
			dialog.NewAssistantMessage("", dialog.ToolCall{
				ID:   "call_1",
				Name: "pc_builder",
				Args: map[string]any{"budget": float64(1500)},
			}),
		)
		cp := &dialog.Checkpoint{
			ThreadID:  threadID,
			State:     state,
			Next:      "build_pc_tools",
			UpdatedAt: time.Now().UTC(),
		}

		err := store.Save(ctx, threadID, cp)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, threadID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, threadID, loaded.ThreadID)
		assert.Equal(t, "build_pc_tools", loaded.Next)
		assert.True(t, loaded.Pending())
		require.NotNil(t, loaded.State)
		assert.Equal(t, cp.State.UserInfo, loaded.State.UserInfo)
		assert.Equal(t, cp.State.DialogStack, loaded.State.DialogStack)
		require.Len(t, loaded.State.Messages, 2)
		assert.Equal(t, "call_1", loaded.State.Messages[1].ToolCalls[0].ID)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		cp := &dialog.Checkpoint{ThreadID: threadID, State: dialog.NewState()}
		require.NoError(t, store.Save(ctx, threadID, cp))

		loaded, err := store.Load(ctx, threadID)
		require.NoError(t, err)
		assert.False(t, loaded.Pending(), "second Save should replace the pending marker")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+threadID)
		assert.ErrorIs(t, err, dialog.ErrThreadNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, threadID, &dialog.Checkpoint{ThreadID: threadID, State: dialog.NewState()})
		require.NoError(t, err)

		err = store.Delete(ctx, threadID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, threadID)
		assert.ErrorIs(t, err, dialog.ErrThreadNotFound, "Load after Delete should return ErrThreadNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := threadID + "-1"
		id2 := threadID + "-2"
		require.NoError(t, store.Save(ctx, id1, &dialog.Checkpoint{ThreadID: id1, State: dialog.NewState()}))
		require.NoError(t, store.Save(ctx, id2, &dialog.Checkpoint{ThreadID: id2, State: dialog.NewState()}))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		threads, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, threads, id1)
		assert.Contains(t, threads, id2)
	})
}
