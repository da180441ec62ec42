package routing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTable_Resolve_AbsoluteTarget(t *testing.T) {
	table, err := NewTable("", map[string]string{
		"chat": "https://hooks.example.com/webhook/chat",
	})
	require.NoError(t, err)

	target, err := table.Resolve("chat")
	require.NoError(t, err)
	require.Equal(t, "https://hooks.example.com/webhook/chat", target)
}

func TestTable_Resolve_RelativeTarget(t *testing.T) {
	table, err := NewTable("https://hooks.example.com", map[string]string{
		"chat":       "/webhook/mentor-chat-mode",
		"pdf_status": "webhook/mentor-chat-mode-pdf",
	})
	require.NoError(t, err)

	target, err := table.Resolve("chat")
	require.NoError(t, err)
	require.Equal(t, "https://hooks.example.com/webhook/mentor-chat-mode", target)

	target, err = table.Resolve("pdf_status")
	require.NoError(t, err)
	require.Equal(t, "https://hooks.example.com/webhook/mentor-chat-mode-pdf", target)
}

func TestTable_Resolve_MixedTargets(t *testing.T) {
	table, err := NewTable("https://hooks.example.com", map[string]string{
		"chat": "https://other.example.net/hook",
		"task": "/webhook/task",
	})
	require.NoError(t, err)

	target, err := table.Resolve("chat")
	require.NoError(t, err)
	require.Equal(t, "https://other.example.net/hook", target)

	target, err = table.Resolve("task")
	require.NoError(t, err)
	require.Equal(t, "https://hooks.example.com/webhook/task", target)
}

func TestTable_Resolve_UnknownAction(t *testing.T) {
	table, err := NewTable("https://hooks.example.com", map[string]string{
		"chat": "/webhook/chat",
	})
	require.NoError(t, err)

	_, err = table.Resolve("does-not-exist")
	require.ErrorIs(t, err, ErrUnknownAction)

	_, err = table.Resolve("")
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestNewTable_RelativeTargetWithoutBase(t *testing.T) {
	_, err := NewTable("", map[string]string{
		"chat": "/webhook/chat",
	})
	require.Error(t, err)
}

func TestNewTable_RejectsEmptyActionName(t *testing.T) {
	_, err := NewTable("https://hooks.example.com", map[string]string{
		"": "/webhook/chat",
	})
	require.Error(t, err)
}

func TestTable_Actions_Sorted(t *testing.T) {
	table, err := NewTable("https://hooks.example.com", map[string]string{
		"task":       "/webhook/task",
		"chat":       "/webhook/chat",
		"pdf_status": "/webhook/pdf",
	})
	require.NoError(t, err)

	require.Equal(t, []string{"chat", "pdf_status", "task"}, table.Actions())
}
