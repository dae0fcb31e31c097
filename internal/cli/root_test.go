package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "eventd", cmd.Use)
	assert.Contains(t, cmd.Long, "plain text file")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"add", "list", "edit", "delete", "import", "export", "relocate", "watch", "history", "tui"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestDeleteAlias(t *testing.T) {
	cmd := NewRootCommand()
	subCmd, _, err := cmd.Find([]string{"rm"})
	require.NoError(t, err)
	assert.Equal(t, "delete", subCmd.Name())
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	fileFlag := cmd.PersistentFlags().Lookup("file")
	require.NotNil(t, fileFlag)
	assert.Equal(t, "f", fileFlag.Shorthand)
	assert.Equal(t, "", fileFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestListCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	listCmd, _, err := cmd.Find([]string{"list"})
	require.NoError(t, err)

	daysFlag := listCmd.Flags().Lookup("days")
	require.NotNil(t, daysFlag)
	assert.Equal(t, "n", daysFlag.Shorthand)
	assert.Equal(t, "1", daysFlag.DefValue)

	require.NotNil(t, listCmd.Flags().Lookup("all"))
	require.NotNil(t, listCmd.Flags().Lookup("json"))
}

func TestReminderFlagsListPresets(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"add", "edit"} {
		subCmd, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		flag := subCmd.Flags().Lookup("reminders")
		require.NotNil(t, flag)
		assert.Equal(t, "r", flag.Shorthand)
		assert.Contains(t, flag.Usage, "1440,60,30,10,0")
	}
}

func TestRelocateResetFlag(t *testing.T) {
	cmd := NewRootCommand()
	relocateCmd, _, err := cmd.Find([]string{"relocate"})
	require.NoError(t, err)

	resetFlag := relocateCmd.Flags().Lookup("reset")
	require.NotNil(t, resetFlag)
	assert.Equal(t, "false", resetFlag.DefValue)
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	limitFlag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "20", limitFlag.DefValue)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad input")))

	wrapped := WrapExitError(ExitFailure, "save", errors.New("disk full"))
	assert.Equal(t, "save: disk full", wrapped.Error())
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
}
